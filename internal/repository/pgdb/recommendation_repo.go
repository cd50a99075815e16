package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// RecommendationRepo хранит одну строку рекомендаций на покупателя.
type RecommendationRepo struct {
	pool *pgxpool.Pool
	conv converter.RecommendationConverter
}

func NewRecommendationRepo(pool *pgxpool.Pool, conv converter.RecommendationConverter) *RecommendationRepo {
	return &RecommendationRepo{pool: pool, conv: conv}
}

// Upsert заменяет список целиком. Вызывается внутри транзакции вместе с записью в outbox.
func (r *RecommendationRepo) Upsert(ctx context.Context, rec *domain.Recommendation) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model := r.conv.ToModel(rec)
	query := `
		INSERT INTO recommendations (customer_id, product_ids, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id)
		DO UPDATE SET
			product_ids = EXCLUDED.product_ids,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := tx.Exec(ctx, query, model.CustomerID, model.ProductIDs, model.UpdatedAt); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *RecommendationRepo) Get(ctx context.Context, customerID int64) (*domain.Recommendation, error) {
	query := `
		SELECT customer_id, product_ids, updated_at
		FROM recommendations
		WHERE customer_id = $1
	`

	var model converter.RecommendationModel
	err := r.pool.QueryRow(ctx, query, customerID).Scan(&model.CustomerID, &model.ProductIDs, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrRecommendationsNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(&model), nil
}
