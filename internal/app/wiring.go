package app

import (
	"fmt"

	config "github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/repository/memory"
	qdrantRepo "github.com/DRSN-tech/go-recommender/internal/repository/qdrant"
	"github.com/DRSN-tech/go-recommender/internal/repository/redis"
	redisConv "github.com/DRSN-tech/go-recommender/internal/repository/redis/converter"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// catalogSource — всё, что нужно ранжировщикам от репозитория товаров.
type catalogSource interface {
	usecase.ProductRepository
	usecase.VectorIndex
}

// selectRanker собирает ранжировщик по RANKER_BACKEND.
// auto выбирает между линейным проходом и индексом по размеру каталога; индексом служит Qdrant, если он настроен, иначе pgvector.
func selectRanker(cfg *config.RecommendCfg, products catalogSource, qdrant *qdrantRepo.EmbeddingRepo, log logger.Logger) (usecase.SimilarityRanker, error) {
	linear := usecase.NewLinearRanker(products)
	pgvector := usecase.NewIndexRanker(products, config.RankerPgvector)

	var index usecase.SimilarityRanker = pgvector
	if qdrant != nil {
		index = usecase.NewIndexRanker(qdrant, config.RankerQdrant)
	}

	switch cfg.RankerBackend {
	case config.RankerLinear:
		return linear, nil
	case config.RankerPgvector:
		return pgvector, nil
	case config.RankerQdrant:
		if qdrant == nil {
			return nil, fmt.Errorf("%w: RANKER_BACKEND=qdrant requires QDRANT_HOST", e.ErrIncorrectEnvVariable)
		}
		return index, nil
	case config.RankerAuto, "":
		log.Infof("ranker: auto (linear up to %d products, then %s)", cfg.IndexThreshold, index.Name())
		return usecase.NewSelectingRanker(linear, index, products, cfg.IndexThreshold, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown ranker %q", e.ErrIncorrectEnvVariable, cfg.RankerBackend)
	}
}

func conversationStore(cfg *config.SessionCfg, client goredis.Cmdable) usecase.ConversationRepository {
	if cfg.Backend == config.SessionRedis {
		return redis.NewConversationRepo(client, redisConv.ConversationConverter{}, cfg.TTL)
	}
	return memory.NewConversationRepo(cfg.Size, cfg.TTL)
}

func toOptions(cfg *config.RecommendCfg) usecase.Options {
	opts := usecase.DefaultOptions()

	setPositive(&opts.DefaultLimit, cfg.DefaultLimit)
	setPositive(&opts.ChatLimit, cfg.ChatLimit)
	setPositive(&opts.MaxLimit, cfg.MaxLimit)
	setPositive(&opts.CandidateCap, cfg.CandidateCap)
	setPositive(&opts.FeaturedLimit, cfg.FeaturedLimit)
	setPositive(&opts.StorageTimeout, cfg.StorageTimeout)
	setPositive(&opts.SearchTimeout, cfg.SearchTimeout)
	setPositive(&opts.EmbeddingTimeout, cfg.EmbeddingTimeout)
	setPositive(&opts.CompletionTimeout, cfg.CompletionTimeout)

	if cfg.ProfileStrategy != "" {
		opts.ProfileStrategy = usecase.ProfileStrategy(cfg.ProfileStrategy)
	}
	opts.FollowUpWeight = cfg.FollowUpWeight

	return opts
}

func setPositive[T ~int | ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
