package usecase

import (
	"context"
	"sort"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
)

// ProfileBuilder сводит историю заказов покупателя в один вектор интересов.
type ProfileBuilder struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
}

func NewProfileBuilder(orderRepo OrderRepository, productRepo ProductRepository) *ProfileBuilder {
	return &ProfileBuilder{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Build строит профиль по всем заказам покупателя.
// Без заказов возвращает e.ErrNoHistory, без единого купленного товара с эмбеддингом возвращает e.ErrNoEmbeddableHistory.
func (b *ProfileBuilder) Build(ctx context.Context, customerID int64, strategy ProfileStrategy) (*Profile, error) {
	const op = "ProfileBuilder.Build"

	if !strategy.Valid() {
		return nil, e.Wrap(op, e.ErrInvalidStrategy)
	}

	orders, err := b.orderRepo.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, e.Wrap(op, e.Dependency(err))
	}

	if len(orders) == 0 {
		return nil, e.Wrap(op, e.ErrNoHistory)
	}

	purchased := purchasedProductIDs(orders)
	if len(purchased) == 0 {
		return nil, e.Wrap(op, e.ErrNoEmbeddableHistory)
	}

	products, err := b.productRepo.GetByIDs(ctx, purchased)
	if err != nil {
		return nil, e.Wrap(op, e.Dependency(err))
	}

	byID := make(map[int64]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// порядок vectors совпадает с purchased: от свежих покупок к старым
	vectors := make([]domain.Vector, 0, len(purchased))
	for _, id := range purchased {
		p, ok := byID[id]
		if !ok || p.Embedding.IsZero() {
			continue
		}
		vectors = append(vectors, p.Embedding)
	}

	if len(vectors) == 0 {
		return nil, e.Wrap(op, e.ErrNoEmbeddableHistory)
	}

	if strategy == ProfileLatest {
		return &Profile{
			Vector:       vectors[0].Clone(),
			Contributing: 1,
			PurchasedIDs: purchased,
		}, nil
	}

	mean, err := domain.Mean(vectors)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &Profile{
		Vector:       mean,
		Contributing: len(vectors),
		PurchasedIDs: purchased,
	}, nil
}

// purchasedProductIDs возвращает уникальные id купленных товаров, начиная с последнего заказа.
func purchasedProductIDs(orders []domain.Order) []int64 {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PlacedAt.Equal(sorted[j].PlacedAt) {
			return sorted[i].PlacedAt.After(sorted[j].PlacedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, order := range sorted {
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	return ids
}
