package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/metrics"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
)

// noCategoryLabel — ответ экстрактора, когда в тексте нет категории.
const noCategoryLabel = "none"

// FilterResolver сопоставляет свободный текст с категорией каталога.
// Любая ошибка на этом шаге не фатальна: фильтр просто не применяется.
type FilterResolver struct {
	extractor    CategoryExtractor
	categoryRepo CategoryRepository
	logger       logger.Logger
}

func NewFilterResolver(extractor CategoryExtractor, categoryRepo CategoryRepository, logger logger.Logger) *FilterResolver {
	return &FilterResolver{
		extractor:    extractor,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Resolve возвращает категорию, название которой без учёта регистра совпадает с меткой,
// извлечённой из intent. nil означает «без фильтра».
func (f *FilterResolver) Resolve(ctx context.Context, intent string) *domain.Category {
	const op = "FilterResolver.Resolve"

	intent = strings.TrimSpace(intent)
	if intent == "" {
		return nil
	}

	if f.extractor == nil {
		f.degrade("%s: category extractor is not configured", op)
		return nil
	}

	categories, err := f.categoryRepo.List(ctx)
	if err != nil {
		f.degrade("%s: failed to list categories: %v", op, err)
		return nil
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	raw, err := f.extractor.ExtractCategory(ctx, intent, names)
	if err != nil {
		f.degrade("%s: category extraction failed: %v", op, err)
		return nil
	}

	label := normalizeLabel(raw)
	if label == "" || strings.EqualFold(label, noCategoryLabel) {
		f.logger.Debugf("%s: no category in %q", op, intent)
		return nil
	}

	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), label) {
			category := c
			return &category
		}
	}

	f.logger.Debugf("%s: label %q does not match any category", op, label)
	return nil
}

func (f *FilterResolver) degrade(format string, args ...any) {
	metrics.DegradedFeatures.WithLabelValues(metrics.FeatureCategoryFilter).Inc()
	f.logger.Warnf(format, args...)
}

// normalizeLabel убирает пробелы, кавычки и завершающую точку, которые модель иногда добавляет.
func normalizeLabel(raw string) string {
	label := strings.TrimSpace(raw)
	label = strings.Trim(label, "\"'`")
	label = strings.TrimSuffix(label, ".")
	return strings.TrimSpace(label)
}
