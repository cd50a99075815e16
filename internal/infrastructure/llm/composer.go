package llm

import (
	"context"
	"strings"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gollem"
	"github.com/sony/gobreaker/v2"
)

// Composer генерирует текст ответа ассистента.
type Composer struct {
	client gollem.LLMClient
	retry  retrier
	cb     *gobreaker.CircuitBreaker[string]
}

func NewComposer(client gollem.LLMClient, cfg *cfg.LLMCfg, logger logger.Logger) *Composer {
	return &Composer{
		client: client,
		retry:  newRetrier(cfg, logger),
		cb:     newBreaker[string]("llm-completion", cfg, logger),
	}
}

func (c *Composer) Compose(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "Composer.Compose"

	var reply string
	err := c.retry.do(ctx, op, func() error {
		r, err := c.cb.Execute(func() (string, error) {
			return c.composeOnce(ctx, systemPrompt, userPrompt)
		})
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	if err != nil {
		return "", err
	}

	return reply, nil
}

func (c *Composer) composeOnce(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var opts []gollem.SessionOption
	if systemPrompt != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(systemPrompt))
	}

	session, err := c.client.NewSession(ctx, opts...)
	if err != nil {
		return "", err
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(userPrompt)})
	if err != nil {
		return "", err
	}

	if resp == nil {
		return "", nil
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "")), nil
}
