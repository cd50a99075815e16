package converter

import "github.com/DRSN-tech/go-recommender/internal/domain"

type ProductConverter struct{}

func (ProductConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Brand:       entity.Brand,
		Price:       entity.Price,
		Image:       entity.Image,
		CategoryID:  entity.CategoryID,
		IsFeatured:  entity.IsFeatured,
		IsArchived:  entity.IsArchived,
	}
}

func (ProductConverter) ToEntity(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Brand:       model.Brand,
		Price:       model.Price,
		Image:       model.Image,
		CategoryID:  model.CategoryID,
		IsFeatured:  model.IsFeatured,
		IsArchived:  model.IsArchived,
	}
}

func (c ProductConverter) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	out := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		out = append(out, *c.ToRedisModel(&entities[i]))
	}
	return out
}

type ConversationConverter struct{}

// ToRedisModel возвращает nil для сессии без запросов: хранить её незачем.
func (ConversationConverter) ToRedisModel(entity *domain.Conversation) *ConversationRedisModel {
	if entity == nil || entity.Last == nil {
		return nil
	}

	return &ConversationRedisModel{
		SessionID: entity.SessionID,
		Query:     entity.Last.Query,
		Embedding: entity.Last.Embedding,
		At:        entity.Last.At,
	}
}

func (ConversationConverter) ToEntity(model *ConversationRedisModel) *domain.Conversation {
	c := domain.NewConversation(model.SessionID)
	c.Record(model.Query, domain.Vector(model.Embedding), model.At)
	return c
}
