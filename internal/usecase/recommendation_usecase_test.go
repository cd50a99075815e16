package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gt"
)

type fixture struct {
	products      *fakeProductRepo
	orders        *fakeOrderRepo
	categories    *fakeCategoryRepo
	recs          *fakeRecommendationRepo
	outbox        *fakeOutboxRepo
	conversations *fakeConversationRepo
	embedder      *fakeEmbedder
	extractor     *fakeExtractor
	composer      *fakeComposer
	tx            *fakeTx
}

func newFixture() *fixture {
	e1 := []float32{1, 0, 0}

	featured := product(7, 3, "gift card", 0, 0, 1)
	featured.IsFeatured = true

	return &fixture{
		products: newFakeProductRepo(
			product(1, 1, "P1", e1...),
			product(2, 1, "P2", e1...),
			product(3, 1, "P3", 0.8, 0.6, 0),
			product(4, 2, "trousers A", 0.7, 0.7, 0),
			product(5, 2, "trousers B", 0, 1, 0),
			featured,
		),
		orders: &fakeOrderRepo{orders: map[int64][]domain.Order{
			100: {{ID: 1, CustomerID: 100, PlacedAt: time.Now(), Items: []domain.OrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}}}},
		}},
		categories:    categories(),
		recs:          newFakeRecommendationRepo(),
		outbox:        &fakeOutboxRepo{},
		conversations: newFakeConversationRepo(),
		embedder: &fakeEmbedder{vectors: map[string]domain.Vector{
			"shoes":          {1, 0, 0},
			"cheaper ones":   {0, 1, 0},
			"women trousers": {0, 1, 0},
		}},
		extractor: &fakeExtractor{labels: map[string]string{"women trousers": "Women's Trousers"}},
		composer:  &fakeComposer{reply: "Try these!"},
		tx:        &fakeTx{},
	}
}

func (f *fixture) uc() *RecommendationUseCase {
	return NewRecommendationUC(RecommendationDeps{
		ProductRepo:        f.products,
		OrderRepo:          f.orders,
		CategoryRepo:       f.categories,
		RecommendationRepo: f.recs,
		OutboxRepo:         f.outbox,
		ConversationRepo:   f.conversations,
		Ranker:             NewLinearRanker(f.products),
		Embedder:           f.embedder,
		Extractor:          f.extractor,
		Composer:           f.composer,
		Encoder:            fakeEncoder{},
		Tx:                 f.tx,
	}, DefaultOptions(), logger.Nop{})
}

func summaryIDs(products []domain.ProductSummary) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestRecommendFromHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("purchased products excluded on request", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 2, ExcludePurchased: true})
		gt.NoError(t, err).Required()
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{3, 4})

		stored, err := f.recs.Get(ctx, 100)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ProductIDs).Equal([]int64{3, 4})
		gt.Array(t, f.outbox.events).Length(1)
		gt.Value(t, f.outbox.events[0].CustomerID).Equal(int64(100))
		gt.Value(t, f.outbox.events[0].EventType).Equal(RecommendationUpdated)
		gt.Value(t, f.tx.calls).Equal(1)
	})

	t.Run("purchased products kept by default", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 3})
		gt.NoError(t, err).Required()
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{1, 2, 3})
	})

	t.Run("price is converted from kopecks", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 1})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Products[0].Price.String()).Equal("100")
	})

	t.Run("customer without orders", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 200})
		gt.Error(t, err).Is(e.ErrNoHistory)
		gt.Value(t, f.recs.upserts).Equal(0)
	})

	t.Run("no candidates left is an empty result", func(t *testing.T) {
		f := newFixture()
		f.products = newFakeProductRepo(product(1, 1, "P1", 1, 0, 0), product(2, 1, "P2", 1, 0, 0))
		res, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, ExcludePurchased: true})
		gt.NoError(t, err).Required()
		gt.Array(t, res.Products).Length(0)
		gt.Value(t, res.Message).Equal(MsgNoCandidates)
		gt.Value(t, f.recs.upserts).Equal(0)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 0})
		gt.Error(t, err).Is(e.ErrCustomerIDRequired)

		_, err = f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 1000})
		gt.Error(t, err).Is(e.ErrInvalidLimit)

		_, err = f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: -1})
		gt.Error(t, err).Is(e.ErrInvalidInput)
	})

	t.Run("persistence failure is a dependency error", func(t *testing.T) {
		f := newFixture()
		f.recs.err = errors.New("deadlock")
		_, err := f.uc().RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100})
		gt.Error(t, err).Is(e.ErrDependencyUnavailable)
	})
}

func TestGetStoredRecommendations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.uc()

	_, err := uc.GetStoredRecommendations(ctx, 100)
	gt.Error(t, err).Is(e.ErrNotFound)

	gt.NoError(t, f.recs.Upsert(ctx, domain.NewRecommendation(100, []int64{5, 3, 999, 1}, time.Now()))).Required()

	res, err := uc.GetStoredRecommendations(ctx, 100)
	gt.NoError(t, err).Required()
	// удалённый из каталога товар пропускается, порядок сохраняется
	gt.Value(t, summaryIDs(res.Products)).Equal([]int64{5, 3, 1})
}

func TestRecommendationRepo_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.uc()

	_, err := uc.RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 3})
	gt.NoError(t, err).Required()
	_, err = uc.RecommendFromHistory(ctx, &HistoryRecommendationReq{CustomerID: 100, Limit: 1, ExcludePurchased: true})
	gt.NoError(t, err).Required()

	stored, err := f.recs.Get(ctx, 100)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.ProductIDs).Equal([]int64{3})
	gt.Value(t, len(f.recs.recs)).Equal(1)
}

func TestRecommendFromQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh then continuing", func(t *testing.T) {
		f := newFixture()
		uc := f.uc()

		first, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s1", Query: "shoes", Limit: 2})
		gt.NoError(t, err).Required()
		gt.Value(t, first.Phase).Equal(domain.Fresh)
		gt.Value(t, first.Reply).Equal("Try these!")
		gt.Value(t, summaryIDs(first.Products)).Equal([]int64{1, 2})
		gt.String(t, f.composer.lastPrompt).Contains(`A user asked: "shoes"`)

		second, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s1", Query: "cheaper ones", Limit: 2})
		gt.NoError(t, err).Required()
		gt.Value(t, second.Phase).Equal(domain.Continuing)
		gt.String(t, f.composer.lastPrompt).Contains(`previously asked: "shoes"`)
		gt.String(t, f.composer.lastPrompt).Contains(`asking: "cheaper ones"`)

		// помнится только последний запрос
		c, err := f.conversations.Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Value(t, c.Last.Query).Equal("cheaper ones")
	})

	t.Run("sessions are independent", func(t *testing.T) {
		f := newFixture()
		uc := f.uc()

		_, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "a", Query: "shoes"})
		gt.NoError(t, err).Required()

		res, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "b", Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Phase).Equal(domain.Fresh)
	})

	t.Run("end session forgets state", func(t *testing.T) {
		f := newFixture()
		uc := f.uc()

		_, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "a", Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.NoError(t, uc.EndSession(ctx, "a")).Required()

		res, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "a", Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Phase).Equal(domain.Fresh)
	})

	t.Run("composer failure falls back to a fixed reply", func(t *testing.T) {
		f := newFixture()
		f.composer.err = errors.New("503")
		res, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", Query: "shoes", Limit: 2})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Reply).Equal("Here are some products you might like: P1, P2.")
	})

	t.Run("conversation store failure starts fresh", func(t *testing.T) {
		f := newFixture()
		f.conversations.getErr = errors.New("redis down")
		f.conversations.saveErr = errors.New("redis down")
		res, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Phase).Equal(domain.Fresh)
	})

	t.Run("purchase history personalizes the prompt", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", CustomerID: 100, Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.String(t, f.composer.lastPrompt).Contains("previously bought: P1, P2")
	})

	t.Run("embedding failure is fatal", func(t *testing.T) {
		f := newFixture()
		f.embedder.err = errors.New("timeout")
		_, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", Query: "shoes"})
		gt.Error(t, err).Is(e.ErrDependencyUnavailable)

		c, err := f.conversations.Get(ctx, "s")
		gt.NoError(t, err).Required()
		gt.Value(t, c).Nil()
	})

	t.Run("query flow does not persist recommendations", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", CustomerID: 100, Query: "shoes"})
		gt.NoError(t, err).Required()
		gt.Value(t, f.recs.upserts).Equal(0)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", Query: "  "})
		gt.Error(t, err).Is(e.ErrQueryRequired)
		_, err = f.uc().RecommendFromQuery(ctx, &QueryRecommendationReq{Query: "shoes"})
		gt.Error(t, err).Is(e.ErrSessionIDRequired)
		gt.Value(t, f.embedder.calls).Equal(0)
	})

	t.Run("provider not configured", func(t *testing.T) {
		f := newFixture()
		uc := f.uc()
		uc.embedder = nil
		_, err := uc.RecommendFromQuery(ctx, &QueryRecommendationReq{SessionID: "s", Query: "shoes"})
		gt.Error(t, err).Is(e.ErrProviderNotConfigured)
	})
}

func TestRecommendForAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("category resolved from query restricts ranking", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendForAdmin(ctx, &AdminRecommendationReq{CustomerID: 100, Query: "women trousers"})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Category).NotNil()
		gt.Value(t, res.Category.Name).Equal("Women's Trousers")
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{4, 5})
		gt.Value(t, res.Message).Equal("Try these!")

		stored, err := f.recs.Get(ctx, 100)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ProductIDs).Equal([]int64{4, 5})
	})

	t.Run("unmatched query ranks whole catalog", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendForAdmin(ctx, &AdminRecommendationReq{CustomerID: 100, Query: "asdf1234", Limit: 3})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Category).Nil()
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{1, 2, 3})
	})

	t.Run("extractor failure degrades to full catalog", func(t *testing.T) {
		f := newFixture()
		f.extractor.err = errors.New("unavailable")
		res, err := f.uc().RecommendForAdmin(ctx, &AdminRecommendationReq{CustomerID: 100, Query: "women trousers", Limit: 1})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Category).Nil()
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{1})
	})

	t.Run("customer without history ranks by query", func(t *testing.T) {
		f := newFixture()
		res, err := f.uc().RecommendForAdmin(ctx, &AdminRecommendationReq{CustomerID: 300, Query: "women trousers", Limit: 1})
		gt.NoError(t, err).Required()
		gt.Value(t, summaryIDs(res.Products)).Equal([]int64{5})
	})

	t.Run("customer without history and without query", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc().RecommendForAdmin(ctx, &AdminRecommendationReq{CustomerID: 300})
		gt.Error(t, err).Is(e.ErrNoHistory)
	})
}

func TestFeaturedProducts(t *testing.T) {
	f := newFixture()
	res, err := f.uc().FeaturedProducts(context.Background(), 0)
	gt.NoError(t, err).Required()
	gt.Value(t, summaryIDs(res.Products)).Equal([]int64{7})

	f.products.err = errors.New("db down")
	_, err = f.uc().FeaturedProducts(context.Background(), 0)
	gt.Error(t, err).Is(e.ErrDependencyUnavailable)
}

func TestSearchVector(t *testing.T) {
	uc := newFixture().uc()
	prev := &domain.ConversationTurn{Query: "a", Embedding: domain.Vector{0, 1}}

	gt.Value(t, uc.searchVector(domain.Vector{1, 0}, prev)).Equal(domain.Vector{1, 0})

	uc.opts.FollowUpWeight = 0.5
	gt.Value(t, uc.searchVector(domain.Vector{1, 0}, prev)).Equal(domain.Vector{1, 0.5})
	gt.Value(t, uc.searchVector(domain.Vector{1, 0}, nil)).Equal(domain.Vector{1, 0})
}
