package qdrant

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/clients"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// EmbeddingRepo репозиторий для работы с embedding-векторами в Qdrant.
// Идентификатор точки совпадает с id товара.
type EmbeddingRepo struct {
	client *qdrant.Client
	coll   string
}

func NewEmbeddingRepo(client *clients.QdrantClient) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client.Client,
		coll:   client.Collection(),
	}
}

// Upsert сохраняет или обновляет embedding-векторы в коллекции Qdrant.
func (q *EmbeddingRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(embeddings))
	for _, emb := range embeddings {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(emb.ProductID)),
			Vectors: qdrant.NewVectors(emb.Vector...),
			Payload: qdrant.NewValueMap(emb.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.coll,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет точки товаров из коллекции. Отсутствующие точки игнорируются.
func (q *EmbeddingRepo) Delete(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, qdrant.NewIDNum(uint64(id)))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.coll,
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Search возвращает ближайшие точки по косинусной метрике коллекции.
func (q *EmbeddingRepo) Search(ctx context.Context, vector domain.Vector, categoryID *int64, limit int) ([]usecase.RankedProduct, error) {
	req := &qdrant.QueryPoints{
		CollectionName: q.coll,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
	}

	if categoryID != nil {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchInt(clients.CategoryField, *categoryID)},
		}
	}

	points, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]usecase.RankedProduct, 0, len(points))
	for _, p := range points {
		result = append(result, usecase.RankedProduct{
			ProductID: int64(p.GetId().GetNum()),
			Score:     float64(p.GetScore()),
		})
	}

	return result, nil
}
