package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/m-mizutani/gt"
)

func TestProfileBuilder_Build(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	products := newFakeProductRepo(
		product(1, 1, "p1", 1, 0, 0),
		product(2, 1, "p2", 0, 1, 0),
		product(3, 1, "p3"),
	)

	orders := &fakeOrderRepo{orders: map[int64][]domain.Order{
		10: {
			{ID: 1, CustomerID: 10, PlacedAt: t0, Items: []domain.OrderItem{{ProductID: 1, Quantity: 1}}},
			{ID: 2, CustomerID: 10, PlacedAt: t0.Add(time.Hour), Items: []domain.OrderItem{{ProductID: 2, Quantity: 3}, {ProductID: 3, Quantity: 1}}},
		},
		11: {{ID: 3, CustomerID: 11, PlacedAt: t0, Items: []domain.OrderItem{{ProductID: 3, Quantity: 1}}}},
		12: {{ID: 4, CustomerID: 12, PlacedAt: t0}},
	}}

	b := NewProfileBuilder(orders, products)

	t.Run("mean of embedded purchases", func(t *testing.T) {
		profile, err := b.Build(ctx, 10, ProfileMean)
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Vector).Equal(domain.Vector{0.5, 0.5, 0})
		gt.Value(t, profile.Contributing).Equal(2)
		gt.Value(t, profile.PurchasedIDs).Equal([]int64{2, 3, 1})
	})

	t.Run("latest strategy takes the most recent embedded purchase", func(t *testing.T) {
		profile, err := b.Build(ctx, 10, ProfileLatest)
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Vector).Equal(domain.Vector{0, 1, 0})
		gt.Value(t, profile.Contributing).Equal(1)
	})

	t.Run("empty strategy falls back to mean", func(t *testing.T) {
		profile, err := b.Build(ctx, 10, "")
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Contributing).Equal(2)
	})

	t.Run("no orders", func(t *testing.T) {
		_, err := b.Build(ctx, 99, ProfileMean)
		gt.Error(t, err).Is(e.ErrNoHistory)
		gt.Error(t, err).Is(e.ErrNotFound)
	})

	t.Run("orders without embeddings", func(t *testing.T) {
		_, err := b.Build(ctx, 11, ProfileMean)
		gt.Error(t, err).Is(e.ErrNoEmbeddableHistory)
	})

	t.Run("orders without items", func(t *testing.T) {
		_, err := b.Build(ctx, 12, ProfileMean)
		gt.Error(t, err).Is(e.ErrNoEmbeddableHistory)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := b.Build(ctx, 10, "median")
		gt.Error(t, err).Is(e.ErrInvalidStrategy)
	})

	t.Run("storage failure is a dependency error", func(t *testing.T) {
		broken := NewProfileBuilder(&fakeOrderRepo{err: errors.New("connection refused")}, products)
		_, err := broken.Build(ctx, 10, ProfileMean)
		gt.Error(t, err).Is(e.ErrDependencyUnavailable)
	})
}

func TestProfileBuilder_IdenticalEmbeddings(t *testing.T) {
	e1 := []float32{0.2, 0.4, 0.8}
	products := newFakeProductRepo(product(1, 1, "p1", e1...), product(2, 1, "p2", e1...))
	orders := &fakeOrderRepo{orders: map[int64][]domain.Order{
		1: {{ID: 1, CustomerID: 1, Items: []domain.OrderItem{{ProductID: 1}, {ProductID: 2}}}},
	}}

	profile, err := NewProfileBuilder(orders, products).Build(context.Background(), 1, ProfileMean)
	gt.NoError(t, err).Required()

	sim, err := domain.CosineSimilarity(profile.Vector, domain.Vector(e1))
	gt.NoError(t, err).Required()
	gt.Bool(t, sim > 0.999999).True()
	gt.Value(t, profile.Vector).Equal(domain.Vector(e1))
}
