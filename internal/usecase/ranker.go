package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/metrics"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
)

// SimilarityRanker возвращает не больше Limit товаров, ближайших к вектору запроса.
// Порядок детерминирован: по убыванию близости, при равенстве по возрастанию id.
// Если подходящих товаров нет, возвращается e.ErrEmptyCandidateSet.
type SimilarityRanker interface {
	Rank(ctx context.Context, q RankQuery) ([]RankedProduct, error)
	Name() string
}

// LinearRanker считает близость ко всем товарам каталога в памяти процесса.
type LinearRanker struct {
	productRepo ProductRepository
}

func NewLinearRanker(productRepo ProductRepository) *LinearRanker {
	return &LinearRanker{productRepo: productRepo}
}

func (r *LinearRanker) Name() string { return "linear" }

func (r *LinearRanker) Rank(ctx context.Context, q RankQuery) ([]RankedProduct, error) {
	const op = "LinearRanker.Rank"
	defer observeRanking(r.Name(), time.Now())

	products, err := r.productRepo.ListEmbedded(ctx, q.CategoryID)
	if err != nil {
		return nil, e.Wrap(op, e.Dependency(err))
	}

	scored := make([]RankedProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		if !p.Embeddable() || q.excluded(p.ID) {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}

		score, err := domain.CosineSimilarity(q.Vector, p.Embedding)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		scored = append(scored, RankedProduct{ProductID: p.ID, Score: score})
	}

	metrics.RankingCandidates.WithLabelValues(r.Name()).Observe(float64(len(scored)))
	return finalizeRanking(scored, q.Limit)
}

// IndexRanker делегирует поиск соседей внешнему индексу и приводит результат к общему порядку.
type IndexRanker struct {
	index VectorIndex
	name  string
}

func NewIndexRanker(index VectorIndex, name string) *IndexRanker {
	return &IndexRanker{index: index, name: name}
}

func (r *IndexRanker) Name() string { return r.name }

func (r *IndexRanker) Rank(ctx context.Context, q RankQuery) ([]RankedProduct, error) {
	const op = "IndexRanker.Rank"
	defer observeRanking(r.name, time.Now())

	// индекс не знает про исключения, поэтому запрашиваем с запасом
	limit := max(q.CandidateCap, q.Limit) + len(q.Exclude)

	found, err := r.index.Search(ctx, q.Vector, q.CategoryID, limit)
	if err != nil {
		return nil, e.Wrap(op, e.Dependency(err))
	}

	seen := make(map[int64]struct{}, len(found))
	scored := make([]RankedProduct, 0, len(found))
	for _, rp := range found {
		// нулевой эмбеддинг даёт NaN в pgvector
		if q.excluded(rp.ProductID) || math.IsNaN(rp.Score) || math.IsInf(rp.Score, 0) {
			continue
		}
		if _, dup := seen[rp.ProductID]; dup {
			continue
		}
		seen[rp.ProductID] = struct{}{}
		scored = append(scored, rp)
	}

	metrics.RankingCandidates.WithLabelValues(r.name).Observe(float64(len(scored)))
	return finalizeRanking(scored, q.Limit)
}

// CatalogCounter сообщает размер каталога с эмбеддингами.
type CatalogCounter interface {
	CountEmbedded(ctx context.Context) (int, error)
}

// SelectingRanker выбирает индекс для больших каталогов и линейный проход для маленьких.
type SelectingRanker struct {
	linear    SimilarityRanker
	index     SimilarityRanker
	counter   CatalogCounter
	threshold int
	logger    logger.Logger
}

// NewSelectingRanker создаёт ранжировщик с выбором бэкенда. index может быть nil.
// При threshold <= 0 всегда используется индекс, если он есть.
func NewSelectingRanker(linear, index SimilarityRanker, counter CatalogCounter, threshold int, logger logger.Logger) *SelectingRanker {
	return &SelectingRanker{
		linear:    linear,
		index:     index,
		counter:   counter,
		threshold: threshold,
		logger:    logger,
	}
}

func (s *SelectingRanker) Name() string { return "auto" }

func (s *SelectingRanker) Rank(ctx context.Context, q RankQuery) ([]RankedProduct, error) {
	return s.pick(ctx).Rank(ctx, q)
}

func (s *SelectingRanker) pick(ctx context.Context) SimilarityRanker {
	if s.index == nil {
		return s.linear
	}
	if s.threshold <= 0 || s.counter == nil {
		return s.index
	}

	count, err := s.counter.CountEmbedded(ctx)
	if err != nil {
		s.logger.Warnf("SelectingRanker.pick: catalog size unknown, using %s: %v", s.index.Name(), err)
		return s.index
	}

	if count < s.threshold {
		return s.linear
	}
	return s.index
}

// finalizeRanking сортирует по убыванию близости (при равенстве по id) и обрезает до limit.
func finalizeRanking(scored []RankedProduct, limit int) ([]RankedProduct, error) {
	if limit <= 0 {
		return nil, e.ErrInvalidLimit
	}
	if len(scored) == 0 {
		return nil, e.ErrEmptyCandidateSet
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ProductID < scored[j].ProductID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

func observeRanking(backend string, start time.Time) {
	metrics.RankingDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
