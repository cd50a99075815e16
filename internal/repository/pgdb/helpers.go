package pgdb

import (
	"cmp"
	"errors"
	"slices"

	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// postgresDuplicate сообщает, что запись нарушила уникальный индекс.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func sortByCreatedAt(events []*usecase.OutboxEvent) {
	slices.SortStableFunc(events, func(a, b *usecase.OutboxEvent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
