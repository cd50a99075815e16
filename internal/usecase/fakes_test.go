package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
)

type fakeProductRepo struct {
	products map[int64]domain.Product
	err      error
	countErr error
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) sorted() []domain.Product {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListEmbedded(_ context.Context, categoryID *int64) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0)
	for _, p := range r.sorted() {
		if !p.Embeddable() {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) CountEmbedded(ctx context.Context) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	list, err := r.ListEmbedded(ctx, nil)
	return len(list), err
}

func (r *fakeProductRepo) ListFeatured(_ context.Context, limit int) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0)
	for _, p := range r.sorted() {
		if p.IsFeatured && !p.IsArchived && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListForIndex(_ context.Context, afterID int64, limit int) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0)
	for _, p := range r.sorted() {
		if p.ID > afterID && p.Embedding != nil && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders map[int64][]domain.Order
	err    error
}

func (r *fakeOrderRepo) GetByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.orders[customerID], nil
}

type fakeCategoryRepo struct {
	categories []domain.Category
	err        error
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	return r.categories, r.err
}

type fakeRecommendationRepo struct {
	mu      sync.Mutex
	recs    map[int64]*domain.Recommendation
	err     error
	upserts int
}

func newFakeRecommendationRepo() *fakeRecommendationRepo {
	return &fakeRecommendationRepo{recs: make(map[int64]*domain.Recommendation)}
}

func (r *fakeRecommendationRepo) Upsert(_ context.Context, rec *domain.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.upserts++
	r.recs[rec.CustomerID] = domain.NewRecommendation(rec.CustomerID, rec.ProductIDs, rec.UpdatedAt)
	return nil
}

func (r *fakeRecommendationRepo) Get(_ context.Context, customerID int64) (*domain.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.recs[customerID]
	if !ok {
		return nil, e.ErrRecommendationsNotFound
	}
	return rec, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
	err    error
}

func (r *fakeOutboxRepo) Enqueue(_ context.Context, event *OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]domain.Conversation
	getErr        error
	saveErr       error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]domain.Conversation)}
}

func (r *fakeConversationRepo) Get(_ context.Context, sessionID string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.conversations[sessionID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeConversationRepo) Save(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.conversations[c.SessionID] = *c
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, sessionID)
	return nil
}

type fakeEmbedder struct {
	vectors map[string]domain.Vector
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.Vector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

type fakeExtractor struct {
	labels map[string]string
	err    error
	calls  int
}

func (f *fakeExtractor) ExtractCategory(_ context.Context, intent string, _ []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if label, ok := f.labels[intent]; ok {
		return label, nil
	}
	return noCategoryLabel, nil
}

type fakeComposer struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeComposer) Compose(_ context.Context, _, userPrompt string) (string, error) {
	f.lastPrompt = userPrompt
	return f.reply, f.err
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeEncoder struct{}

func (fakeEncoder) EncodeRecommendationUpdated(eventID string, _ *domain.Recommendation) ([]byte, error) {
	return []byte(eventID), nil
}

type fakeIndex struct {
	results []RankedProduct
	err     error
	limit   int
}

func (f *fakeIndex) Search(_ context.Context, _ domain.Vector, _ *int64, limit int) ([]RankedProduct, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeIndexWriter struct {
	upserted []int64
	deleted  []int64
	err      error
}

func (f *fakeIndexWriter) Upsert(_ context.Context, embeddings []domain.Embedding) error {
	if f.err != nil {
		return f.err
	}
	for _, emb := range embeddings {
		f.upserted = append(f.upserted, emb.ProductID)
	}
	return nil
}

func (f *fakeIndexWriter) Delete(_ context.Context, ids []int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func product(id, categoryID int64, name string, emb ...float32) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Price:       10000,
		CategoryID:  categoryID,
		Embedding:   domain.Vector(emb),
	}
}
