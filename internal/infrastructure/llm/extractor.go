package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/gollem"
	"github.com/sony/gobreaker/v2"
)

const noCategory = "none"

var categorySchema = &gollem.Parameter{
	Title:       "CategoryExtraction",
	Description: "Product category mentioned in a shopping request",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"category": {
			Type:        gollem.TypeString,
			Description: "Exactly one of the listed category names, or none",
			Required:    true,
		},
	},
}

type categoryExtraction struct {
	Category string `json:"category"`
}

// Extractor определяет категорию товара в свободном тексте запроса.
type Extractor struct {
	client gollem.LLMClient
	retry  retrier
	cb     *gobreaker.CircuitBreaker[string]
}

func NewExtractor(client gollem.LLMClient, cfg *cfg.LLMCfg, logger logger.Logger) *Extractor {
	return &Extractor{
		client: client,
		retry:  newRetrier(cfg, logger),
		cb:     newBreaker[string]("llm-extraction", cfg, logger),
	}
}

// ExtractCategory возвращает одно из имён categories или "none".
func (x *Extractor) ExtractCategory(ctx context.Context, intent string, categories []string) (string, error) {
	const op = "Extractor.ExtractCategory"

	prompt := buildExtractionPrompt(intent, categories)

	var label string
	err := x.retry.do(ctx, op, func() error {
		l, err := x.cb.Execute(func() (string, error) {
			return x.extractOnce(ctx, prompt)
		})
		if err != nil {
			return err
		}
		label = l
		return nil
	})
	if err != nil {
		return "", err
	}

	return label, nil
}

func (x *Extractor) extractOnce(ctx context.Context, prompt string) (string, error) {
	session, err := x.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(categorySchema),
	)
	if err != nil {
		return "", err
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", err
	}

	return parseExtraction(resp)
}

func parseExtraction(resp *gollem.Response) (string, error) {
	if resp == nil || len(resp.Texts) == 0 {
		return noCategory, nil
	}

	var out categoryExtraction
	if err := json.Unmarshal([]byte(strings.Join(resp.Texts, "")), &out); err != nil {
		return "", fmt.Errorf("%w: malformed extraction response: %w", e.ErrDependencyUnavailable, err)
	}

	if strings.TrimSpace(out.Category) == "" {
		return noCategory, nil
	}

	return out.Category, nil
}

func buildExtractionPrompt(intent string, categories []string) string {
	var b strings.Builder
	b.WriteString("Identify the product category mentioned in the following request.\n")
	b.WriteString("Available categories:\n")
	for _, c := range categories {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Request: %q\n", intent)
	b.WriteString("Answer with exactly one category name from the list, or \"none\" if no category applies.")
	return b.String()
}
