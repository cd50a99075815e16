package usecase

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
)

// Embedder превращает текст запроса в эмбеддинг той же размерности, что и каталог.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}

// CategoryExtractor извлекает из свободного текста название категории или "none".
type CategoryExtractor interface {
	ExtractCategory(ctx context.Context, intent string, categories []string) (string, error)
}

// ResponseComposer генерирует текстовый ответ для чата.
type ResponseComposer interface {
	Compose(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageResolver превращает сохранённую ссылку на изображение в URL для клиента.
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref string) (string, error)
}

// EventEncoder сериализует событие об обновлении рекомендаций для outbox.
type EventEncoder interface {
	EncodeRecommendationUpdated(eventID string, rec *domain.Recommendation) ([]byte, error)
}
