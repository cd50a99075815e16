package usecase

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
)

type ProductRepository interface {
	// GetByIDs возвращает найденные товары вместе с эмбеддингами. Отсутствующие id пропускаются.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	// ListEmbedded возвращает все неархивные товары с ненулевым эмбеддингом, опционально в одной категории.
	ListEmbedded(ctx context.Context, categoryID *int64) ([]domain.Product, error)
	CountEmbedded(ctx context.Context) (int, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	// ListForIndex постранично отдаёт все товары, включая архивные и без эмбеддинга, упорядоченные по id.
	ListForIndex(ctx context.Context, afterID int64, limit int) ([]domain.Product, error)
}

type OrderRepository interface {
	GetByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// RecommendationRepository хранит по одному списку рекомендаций на покупателя.
type RecommendationRepository interface {
	Upsert(ctx context.Context, rec *domain.Recommendation) error
	Get(ctx context.Context, customerID int64) (*domain.Recommendation, error)
}

// OutboxRepository ставит событие в очередь публикации в той же транзакции, что и изменение данных.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *OutboxEvent) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

// ConversationRepository хранит состояние диалога. Неизвестная сессия считается Fresh, а не ошибкой.
type ConversationRepository interface {
	Get(ctx context.Context, sessionID string) (*domain.Conversation, error)
	Save(ctx context.Context, conversation *domain.Conversation) error
	Delete(ctx context.Context, sessionID string) error
}

// VectorIndex — внешний индекс ближайших соседей (Qdrant, pgvector).
type VectorIndex interface {
	Search(ctx context.Context, query domain.Vector, categoryID *int64, limit int) ([]RankedProduct, error)
}

// IndexWriter синхронизирует эмбеддинги товаров во внешний индекс.
type IndexWriter interface {
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	Delete(ctx context.Context, productIDs []int64) error
}

// Transactor выполняет fn в одной транзакции хранилища.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
