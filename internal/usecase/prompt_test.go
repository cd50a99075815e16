package usecase

import (
	"strings"
	"testing"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/m-mizutani/gt"
)

func TestBuildChatPrompt(t *testing.T) {
	products := []domain.ProductSummary{
		{ID: 1, Name: "Runner", Description: "light shoes"},
		{ID: 2, Name: "Trail", Description: "grippy shoes"},
	}

	t.Run("fresh", func(t *testing.T) {
		p := buildChatPrompt("running shoes", nil, nil, products)
		gt.String(t, p).Contains(`A user asked: "running shoes"`)
		gt.String(t, p).Contains("1. Runner - light shoes")
		gt.String(t, p).Contains("2. Trail - grippy shoes")
		gt.Bool(t, strings.Contains(p, "previously")).False()
	})

	t.Run("follow-up mentions the previous query", func(t *testing.T) {
		prev := &domain.ConversationTurn{Query: "running shoes"}
		p := buildChatPrompt("in red", prev, []string{"Socks"}, products)
		gt.String(t, p).Contains("previously bought: Socks.")
		gt.String(t, p).Contains(`previously asked: "running shoes"`)
		gt.String(t, p).Contains(`asking: "in red"`)
		gt.String(t, p).Contains("considering the previous context")
	})

	t.Run("no products", func(t *testing.T) {
		p := buildChatPrompt("x", nil, nil, nil)
		gt.String(t, p).Contains("(no matching products)")
	})
}

func TestBuildAdminPrompt(t *testing.T) {
	p := buildAdminPrompt(42, "women trousers", &domain.Category{ID: 2, Name: "Women's Trousers"}, nil)
	gt.String(t, p).Contains("customer #42")
	gt.String(t, p).Contains(`"women trousers"`)
	gt.String(t, p).Contains(`category "Women's Trousers"`)
}

func TestFallbackReply(t *testing.T) {
	gt.Value(t, fallbackReply(nil)).Equal("Sorry, I could not find products matching your request.")
	gt.Value(t, fallbackReply([]domain.ProductSummary{{Name: "A"}, {Name: "B"}})).Equal("Here are some products you might like: A, B.")
}
