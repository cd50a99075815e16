package clients

import (
	"context"
	"fmt"

	config "github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// CategoryField — поле payload с категорией товара, по нему фильтруется поиск.
const CategoryField = "category_id"

// QdrantClient — подключение к Qdrant вместе с параметрами коллекции эмбеддингов.
type QdrantClient struct {
	Client     *qdrant.Client
	collection string
	vectorSize uint64
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{
		Client:     client,
		collection: cfg.QdrantCollectionName,
		vectorSize: cfg.VectorSize,
	}, nil
}

func (c *QdrantClient) Collection() string {
	return c.collection
}

func (c *QdrantClient) Close() error {
	return c.Client.Close()
}

// EnsureCollection создаёт коллекцию с косинусной метрикой и индексом по категории.
// Существующая коллекция с другой размерностью векторов считается ошибкой конфигурации.
func (c *QdrantClient) EnsureCollection(ctx context.Context) error {
	exists, err := c.Client.CollectionExists(ctx, c.collection)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}

	if exists {
		info, err := c.Client.GetCollectionInfo(ctx, c.collection)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
		}
		if size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(); size != c.vectorSize {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: collection %s has size %d, want %d",
				e.ErrDimensionMismatch, c.collection, size, c.vectorSize))
		}
	} else {
		err := c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     c.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
		}
	}

	_, err = c.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: c.collection,
		FieldName:      CategoryField,
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}

	return nil
}
