package http

import (
	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/shopspring/decimal"
)

type ProductSummaryResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	Image       string          `json:"image,omitempty"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RecommendationsResponse struct {
	Message         string                   `json:"message"`
	Recommendations []ProductSummaryResponse `json:"recommendations"`
	Category        *CategoryResponse        `json:"category,omitempty"`
	Fallback        bool                     `json:"fallback,omitempty"` // история пуста, показаны избранные товары
}

type ChatRequest struct {
	Query      string `json:"query" validate:"required"`
	CustomerID int64  `json:"customerId" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0"`
}

type ChatResponse struct {
	SessionID       string                   `json:"sessionId"`
	Phase           string                   `json:"phase"`
	Message         string                   `json:"message"`
	Recommendations []ProductSummaryResponse `json:"recommendations"`
}

type AdminRecommendationRequest struct {
	CustomerID       int64  `json:"customerId" validate:"required,gt=0"`
	Query            string `json:"query" validate:"required"`
	Limit            int    `json:"limit" validate:"gte=0"`
	ExcludePurchased bool   `json:"excludePurchased"`
}

type SyncIndexResponse struct {
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
}

func toProductResponses(products []domain.ProductSummary) []ProductSummaryResponse {
	res := make([]ProductSummaryResponse, len(products))
	for i, p := range products {
		res[i] = ProductSummaryResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
		}
	}
	return res
}

func toRecommendationsResponse(res *usecase.RecommendationsRes) *RecommendationsResponse {
	out := &RecommendationsResponse{
		Message:         res.Message,
		Recommendations: toProductResponses(res.Products),
	}

	if res.Category != nil {
		out.Category = &CategoryResponse{ID: res.Category.ID, Name: res.Category.Name}
	}

	return out
}

func toChatResponse(sessionID string, res *usecase.ChatRecommendationRes) *ChatResponse {
	return &ChatResponse{
		SessionID:       sessionID,
		Phase:           res.Phase.String(),
		Message:         res.Reply,
		Recommendations: toProductResponses(res.Products),
	}
}
