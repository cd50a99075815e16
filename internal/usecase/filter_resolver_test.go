package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gt"
)

func categories() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: []domain.Category{
		{ID: 1, Name: "Men's Shoes"},
		{ID: 2, Name: "Women's Trousers"},
	}}
}

func TestFilterResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("label matches category case-insensitively", func(t *testing.T) {
		ex := &fakeExtractor{labels: map[string]string{"women trousers": "women's trousers"}}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "women trousers")
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(int64(2))
		gt.Value(t, got.Name).Equal("Women's Trousers")
		gt.Value(t, ex.calls).Equal(1)
	})

	t.Run("quotes and trailing dot are ignored", func(t *testing.T) {
		ex := &fakeExtractor{labels: map[string]string{"shoes": " \"Men's Shoes.\" "}}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "shoes")
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(int64(1))
	})

	t.Run("no category in text", func(t *testing.T) {
		ex := &fakeExtractor{}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "asdf1234")
		gt.Value(t, got).Nil()
		gt.Value(t, ex.calls).Equal(1)
	})

	t.Run("label that names no existing category", func(t *testing.T) {
		ex := &fakeExtractor{labels: map[string]string{"hats": "Hats"}}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "hats")
		gt.Value(t, got).Nil()
	})

	t.Run("empty intent skips extraction", func(t *testing.T) {
		ex := &fakeExtractor{}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "   ")
		gt.Value(t, got).Nil()
		gt.Value(t, ex.calls).Equal(0)
	})

	t.Run("extractor failure degrades to no filter", func(t *testing.T) {
		ex := &fakeExtractor{err: errors.New("quota exceeded")}
		got := NewFilterResolver(ex, categories(), logger.Nop{}).Resolve(ctx, "women trousers")
		gt.Value(t, got).Nil()
		gt.Value(t, ex.calls).Equal(1)
	})

	t.Run("category listing failure degrades to no filter", func(t *testing.T) {
		ex := &fakeExtractor{}
		repo := &fakeCategoryRepo{err: errors.New("db down")}
		got := NewFilterResolver(ex, repo, logger.Nop{}).Resolve(ctx, "women trousers")
		gt.Value(t, got).Nil()
		gt.Value(t, ex.calls).Equal(0)
	})

	t.Run("missing extractor", func(t *testing.T) {
		got := NewFilterResolver(nil, categories(), logger.Nop{}).Resolve(ctx, "women trousers")
		gt.Value(t, got).Nil()
	})
}
