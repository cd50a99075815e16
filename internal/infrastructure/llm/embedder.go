package llm

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gollem"
	"github.com/sony/gobreaker/v2"
)

// Embedder получает эмбеддинг текста запроса той же размерности, что и каталог.
type Embedder struct {
	client    gollem.LLMClient
	dimension int
	retry     retrier
	cb        *gobreaker.CircuitBreaker[domain.Vector]
}

func NewEmbedder(client gollem.LLMClient, cfg *cfg.LLMCfg, logger logger.Logger) *Embedder {
	return &Embedder{
		client:    client,
		dimension: cfg.EmbeddingDimension,
		retry:     newRetrier(cfg, logger),
		cb:        newBreaker[domain.Vector]("llm-embedding", cfg, logger),
	}
}

func (m *Embedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	const op = "Embedder.Embed"

	var vector domain.Vector
	err := m.retry.do(ctx, op, func() error {
		v, err := m.cb.Execute(func() (domain.Vector, error) {
			return m.embedOnce(ctx, text)
		})
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vector, nil
}

func (m *Embedder) embedOnce(ctx context.Context, text string) (domain.Vector, error) {
	embeddings, err := m.client.GenerateEmbedding(ctx, m.dimension, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, e.ErrEmptyEmbedding
	}

	if m.dimension > 0 && len(embeddings[0]) != m.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", e.ErrDimensionMismatch, len(embeddings[0]), m.dimension)
	}

	// Convert float64 to float32
	vector := make(domain.Vector, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vector[i] = float32(v)
	}

	return vector, nil
}
