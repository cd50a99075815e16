// Package llm подключает внешнего провайдера эмбеддингов и генерации текста через gollem.
package llm

import (
	"context"
	"errors"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/jitter"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
)

// NewClient создаёт клиента провайдера. Для LLM_PROVIDER=none возвращает nil без ошибки:
// функции, которым нужен провайдер, отключаются.
func NewClient(ctx context.Context, cfg *cfg.LLMCfg) (gollem.LLMClient, error) {
	const op = "llm.NewClient"

	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := gemini.New(ctx, cfg.GeminiProject, cfg.GeminiLocation)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return client, nil
}

// retrier повторяет вызов провайдера с экспоненциальной задержкой.
type retrier struct {
	maxRetries int
	backoff    jitter.Backoff
	logger     logger.Logger
}

func newRetrier(cfg *cfg.LLMCfg, logger logger.Logger) retrier {
	return retrier{
		maxRetries: max(cfg.MaxRetries, 1),
		backoff: jitter.Backoff{
			Base:   cfg.RetryBaseDelay,
			Max:    cfg.RetryMaxDelay,
			Jitter: jitter.DefaultJitter,
		},
		logger: logger,
	}
}

// do вызывает fn до maxRetries раз. Отменённый контекст и открытый breaker не повторяются.
func (r retrier) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if !retryable(ctx, err) || attempt == r.maxRetries-1 {
			break
		}

		sleepTime := r.backoff.Next(attempt)
		r.logger.Warnf("%s failed, retrying in %v (attempt %d): %v", op, sleepTime, attempt+1, err)
		if sleepErr := jitter.Sleep(ctx, sleepTime); sleepErr != nil {
			return e.Wrap(op, sleepErr)
		}
	}

	return e.Wrap(op, err)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !isBreakerRejection(err) && !errors.Is(err, e.ErrEmptyEmbedding) && !errors.Is(err, e.ErrDimensionMismatch)
}
