package pgdb

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo читает историю заказов покупателя.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

// GetByCustomer возвращает все заказы покупателя с позициями, новые первыми.
func (o *OrderRepo) GetByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	query := `
		SELECT o.id, o.customer_id, o.placed_at, oi.product_id, oi.quantity
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.customer_id = $1
		ORDER BY o.placed_at DESC, o.id DESC, oi.id
	`

	rows, err := o.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]converter.OrderItemRowModel, 0)
	for rows.Next() {
		var model converter.OrderItemRowModel
		if err := rows.Scan(
			&model.OrderID, &model.CustomerID, &model.PlacedAt, &model.ProductID, &model.Quantity,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}
