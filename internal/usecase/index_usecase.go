package usecase

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
)

// IndexUseCase переносит эмбеддинги товаров из основного хранилища во внешний векторный индекс.
type IndexUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	writer      IndexWriter
	batchSize   int
	logger      logger.Logger
}

func NewIndexUC(productRepo ProductRepository, cacheRepo CacheRepository, writer IndexWriter, batchSize int, logger logger.Logger) *IndexUseCase {
	if batchSize <= 0 {
		batchSize = 256
	}

	return &IndexUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		writer:      writer,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// SyncIndex постранично обходит каталог: ранжируемые товары записываются в индекс,
// архивные и без эмбеддинга удаляются из него. Карточки изменённых товаров вычищаются из кэша.
func (uc *IndexUseCase) SyncIndex(ctx context.Context) (*SyncIndexRes, error) {
	const op = "IndexUseCase.SyncIndex"

	if uc.writer == nil {
		return nil, e.Wrap(op, e.ErrIndexNotConfigured)
	}

	res := &SyncIndexRes{}
	var afterID int64

	for {
		if err := ctx.Err(); err != nil {
			return res, e.Wrap(op, err)
		}

		page, err := uc.productRepo.ListForIndex(ctx, afterID, uc.batchSize)
		if err != nil {
			return res, e.Wrap(op, e.Dependency(err))
		}
		if len(page) == 0 {
			break
		}

		embeddings := make([]domain.Embedding, 0, len(page))
		stale := make([]int64, 0)
		touched := make([]int64, 0, len(page))
		for i := range page {
			p := &page[i]
			touched = append(touched, p.ID)
			if p.Embeddable() {
				embeddings = append(embeddings, *domain.NewEmbedding(p))
			} else {
				stale = append(stale, p.ID)
			}
		}

		if len(embeddings) > 0 {
			if err := uc.writer.Upsert(ctx, embeddings); err != nil {
				return res, e.Wrap(op, e.Dependency(err))
			}
			res.Upserted += len(embeddings)
		}

		if len(stale) > 0 {
			if err := uc.writer.Delete(ctx, stale); err != nil {
				return res, e.Wrap(op, e.Dependency(err))
			}
			res.Deleted += len(stale)
		}

		uc.invalidateCache(ctx, touched)

		afterID = page[len(page)-1].ID
		if len(page) < uc.batchSize {
			break
		}
	}

	uc.logger.Infof("index synced: %d upserted, %d deleted", res.Upserted, res.Deleted)
	return res, nil
}

func (uc *IndexUseCase) invalidateCache(ctx context.Context, ids []int64) {
	if uc.cacheRepo == nil || len(ids) == 0 {
		return
	}

	if err := uc.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		uc.logger.Warnf("failed to invalidate product cache: %v", err)
	}
}
