package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel — канал LISTEN/NOTIFY, по которому воркер узнаёт о новых событиях.
const OutboxChannel = "outbox_pending"

const outboxColumns = "id, event_id, event_type, customer_id, payload, status, created_at, processed_at"

// OutboxEventRepo — очередь событий об обновлении рекомендаций в таблице outbox_events.
// Запись идёт в транзакции вместе с рекомендацией, чтение и смена статуса выполняет воркер публикации.
type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{pool: pool, conv: conv}
}

// Enqueue добавляет событие в транзакции из контекста и будит воркер через NOTIFY.
// Уведомление уходит только после коммита.
func (o *OutboxEventRepo) Enqueue(ctx context.Context, event *usecase.OutboxEvent) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	m := o.conv.ToModel(event)
	err = tx.QueryRow(ctx, `
		INSERT INTO outbox_events (event_id, event_type, customer_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		m.EventID, m.EventType, m.CustomerID, m.Payload, m.Status, m.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		if postgresDuplicate(err) {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("duplicate outbox event %s", event.EventID))
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, '')", OutboxChannel); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Claim переводит до limit самых старых pending-событий в processing.
// SKIP LOCKED позволяет нескольким репликам разбирать очередь без двойной публикации.
func (o *OutboxEventRepo) Claim(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	rows, err := o.pool.Query(ctx, `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumns,
		usecase.Processing, usecase.Pending, limit,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.OutboxEventModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// UPDATE ... RETURNING не сохраняет порядок подзапроса
	events := o.conv.ToArrEntity(models)
	sortByCreatedAt(events)
	return events, nil
}

// MarkPublished завершает событие. Событие не в processing не трогается.
func (o *OutboxEventRepo) MarkPublished(ctx context.Context, id int64) error {
	return o.transition(ctx, id, usecase.Processing, usecase.Processed, "processed_at = NOW()")
}

// Release возвращает событие в очередь после временной ошибки брокера.
func (o *OutboxEventRepo) Release(ctx context.Context, id int64) error {
	return o.transition(ctx, id, usecase.Processing, usecase.Pending, "processing_started_at = NULL")
}

// MarkFailed убирает из очереди событие, которое брокер отверг окончательно.
func (o *OutboxEventRepo) MarkFailed(ctx context.Context, id int64) error {
	return o.transition(ctx, id, usecase.Processing, usecase.Failed, "processed_at = NOW()")
}

// ReleaseStale возвращает в pending события, застрявшие в processing дольше olderThan
// (например, реплика упала посреди публикации).
func (o *OutboxEventRepo) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := o.pool.Exec(ctx, `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < NOW() - make_interval(secs => $3)`,
		usecase.Pending, usecase.Processing, olderThan.Seconds(),
	)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected(), nil
}

func (o *OutboxEventRepo) transition(ctx context.Context, id int64, from, to usecase.OutboxStatus, set string) error {
	_, err := o.pool.Exec(ctx,
		"UPDATE outbox_events SET status = $1, "+set+" WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("event %d %s -> %s: %w", id, from, to, err))
	}

	return nil
}
