package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/redis/converter"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

const productKeyPrefix = "product:"

// CacheRepo кэширует карточки товаров для выдачи рекомендаций.
// Эмбеддинги в кэш не попадают: ранжирование всегда читает их из основного хранилища.
// Ошибки Redis не ломают выдачу, кэш деградирует до промахов.
type CacheRepo struct {
	client goredis.Cmdable
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client goredis.Cmdable, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{client: client, conv: conv, cfg: cfg, logger: logger}
}

// GetProducts возвращает найденные в кэше товары. Отсутствующие id просто не попадают в результат.
func (r *CacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := productKeys(ids)
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}

	var stale []string
	for i, val := range values {
		model, err := decodeProduct(val)
		if err != nil {
			r.logger.Warnf("drop broken cache entry %s: %v", keys[i], err)
			stale = append(stale, keys[i])
			continue
		}
		if model == nil {
			continue
		}
		if model.ID != ids[i] {
			r.logger.Warnf("cache entry %s holds product %d", keys[i], model.ID)
			stale = append(stale, keys[i])
			continue
		}

		result[ids[i]] = *r.conv.ToEntity(model)
	}

	if len(stale) > 0 {
		if err := r.client.Del(ctx, stale...).Err(); err != nil {
			r.logger.Warnf("failed to drop stale cache entries: %v", err)
		}
	}

	return result, nil
}

// SetProducts пишет товары одним pipeline с TTL из конфигурации. Ошибки только логируются.
func (r *CacheRepo) SetProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	_, err := r.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, model := range r.conv.ToArrRedisModel(products) {
			data, err := json.Marshal(model)
			if err != nil {
				r.logger.Warnf("skip caching product %d: %v", model.ID, err)
				continue
			}
			pipe.Set(ctx, productKey(model.ID), data, r.cfg.ProductTTL)
		}
		return nil
	})
	if err != nil {
		r.logger.Warnf("cache write for %d products failed: %v", len(products), err)
	}

	return nil
}

// DeleteProducts сбрасывает товары из кэша после переиндексации.
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, productKeys(ids)...).Err(); err != nil {
		r.logger.Warnf("cache delete for %d products failed: %v", len(ids), err)
	}

	return nil
}

// decodeProduct разбирает значение MGET. nil без ошибки означает промах.
func decodeProduct(val any) (*converter.ProductRedisModel, error) {
	var data []byte
	switch v := val.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("unexpected value type %T", val)
	}

	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func productKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return keys
}
