package converter

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          int64            `db:"id"`
	Name        string           `db:"name"`
	Description string           `db:"description"`
	Brand       string           `db:"brand"`
	Price       int64            `db:"price"`
	Image       string           `db:"image"`
	CategoryID  int64            `db:"category_id"`
	IsFeatured  bool             `db:"is_featured"`
	Embedding   *pgvector.Vector `db:"embedding"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   *time.Time       `db:"updated_at"`
	IsArchived  bool             `db:"is_archived"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID         int64      `db:"id"`
	Name       string     `db:"name"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
	IsArchived bool       `db:"is_archived"`
}

// OrderItemRowModel — строка соединения orders и order_items.
type OrderItemRowModel struct {
	OrderID    int64     `db:"order_id"`
	CustomerID int64     `db:"customer_id"`
	PlacedAt   time.Time `db:"placed_at"`
	ProductID  *int64    `db:"product_id"`
	Quantity   *int32    `db:"quantity"`
}

// RecommendationModel представляет запись таблицы recommendations в PostgreSQL.
type RecommendationModel struct {
	CustomerID int64     `db:"customer_id"`
	ProductIDs []int64   `db:"product_ids"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	CustomerID  int64      `db:"customer_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
