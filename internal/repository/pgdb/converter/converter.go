package converter

import (
	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/pgvector/pgvector-go"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	model := &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Brand:       entity.Brand,
		Price:       entity.Price,
		Image:       entity.Image,
		CategoryID:  entity.CategoryID,
		IsFeatured:  entity.IsFeatured,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
		IsArchived:  entity.IsArchived,
	}

	if len(entity.Embedding) > 0 {
		v := pgvector.NewVector(entity.Embedding)
		model.Embedding = &v
	}

	return model
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	entity := &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Brand:       model.Brand,
		Price:       model.Price,
		Image:       model.Image,
		CategoryID:  model.CategoryID,
		IsFeatured:  model.IsFeatured,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		IsArchived:  model.IsArchived,
	}

	// NULL в колонке embedding означает товар без эмбеддинга
	if model.Embedding != nil {
		entity.Embedding = domain.Vector(model.Embedding.Slice())
	}

	return entity
}

func (c ProductConverter) ToArrEntity(models []*ProductModel) []domain.Product {
	out := make([]domain.Product, 0, len(models))
	for _, m := range models {
		out = append(out, *c.ToEntity(m))
	}
	return out
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToModel(entity *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:         entity.ID,
		Name:       entity.Name,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
		IsArchived: entity.IsArchived,
	}
}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:         model.ID,
		Name:       model.Name,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
		IsArchived: model.IsArchived,
	}
}

// OrderConverter собирает заказы из строк соединения orders и order_items.
type OrderConverter struct{}

// ToArrEntity группирует строки по заказу, сохраняя порядок первого появления.
// Заказ без позиций (product_id IS NULL после LEFT JOIN) остаётся в результате с пустым списком.
func (OrderConverter) ToArrEntity(rows []OrderItemRowModel) []domain.Order {
	orders := make([]domain.Order, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			i = len(orders)
			index[row.OrderID] = i
			orders = append(orders, domain.Order{
				ID:         row.OrderID,
				CustomerID: row.CustomerID,
				PlacedAt:   row.PlacedAt,
				Items:      []domain.OrderItem{},
			})
		}

		if row.ProductID == nil {
			continue
		}

		item := domain.OrderItem{ProductID: *row.ProductID, Quantity: 1}
		if row.Quantity != nil {
			item.Quantity = int(*row.Quantity)
		}
		orders[i].Items = append(orders[i].Items, item)
	}

	return orders
}

// RecommendationConverter преобразует Recommendation между domain и моделью PostgreSQL.
type RecommendationConverter struct{}

func (RecommendationConverter) ToModel(entity *domain.Recommendation) *RecommendationModel {
	ids := entity.ProductIDs
	if ids == nil {
		ids = []int64{}
	}

	return &RecommendationModel{
		CustomerID: entity.CustomerID,
		ProductIDs: ids,
		UpdatedAt:  entity.UpdatedAt,
	}
}

func (RecommendationConverter) ToEntity(model *RecommendationModel) *domain.Recommendation {
	return domain.NewRecommendation(model.CustomerID, model.ProductIDs, model.UpdatedAt)
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		CustomerID:  entity.CustomerID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		CustomerID:  model.CustomerID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}
