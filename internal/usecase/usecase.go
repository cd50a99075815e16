package usecase

import "context"

type RecommendationUC interface {
	GetStoredRecommendations(ctx context.Context, customerID int64) (*RecommendationsRes, error)
	RecommendFromHistory(ctx context.Context, req *HistoryRecommendationReq) (*RecommendationsRes, error)
	RecommendFromQuery(ctx context.Context, req *QueryRecommendationReq) (*ChatRecommendationRes, error)
	RecommendForAdmin(ctx context.Context, req *AdminRecommendationReq) (*RecommendationsRes, error)
	FeaturedProducts(ctx context.Context, limit int) (*RecommendationsRes, error)
	EndSession(ctx context.Context, sessionID string) error
}

type IndexUC interface {
	SyncIndex(ctx context.Context) (*SyncIndexRes, error)
}
