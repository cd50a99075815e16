package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/metrics"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/google/uuid"
)

const (
	MsgNoCandidates = "No products match the request."
	// сколько последних покупок упоминается в промпте чата
	purchaseContextSize = 5
)

// Options — лимиты выдачи и таймауты внешних вызовов.
type Options struct {
	DefaultLimit      int
	ChatLimit         int
	MaxLimit          int
	CandidateCap      int
	FeaturedLimit     int
	ProfileStrategy   ProfileStrategy
	FollowUpWeight    float64
	StorageTimeout    time.Duration
	SearchTimeout     time.Duration
	EmbeddingTimeout  time.Duration
	CompletionTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		DefaultLimit:      10,
		ChatLimit:         5,
		MaxLimit:          50,
		CandidateCap:      100,
		FeaturedLimit:     10,
		ProfileStrategy:   ProfileMean,
		StorageTimeout:    3 * time.Second,
		SearchTimeout:     5 * time.Second,
		EmbeddingTimeout:  15 * time.Second,
		CompletionTimeout: 30 * time.Second,
	}
}

// RecommendationDeps — зависимости RecommendationUseCase.
// Embedder, Composer, Extractor, Images и Cache могут быть nil: соответствующие шаги отключаются.
type RecommendationDeps struct {
	ProductRepo        ProductRepository
	OrderRepo          OrderRepository
	CategoryRepo       CategoryRepository
	RecommendationRepo RecommendationRepository
	OutboxRepo         OutboxRepository
	ConversationRepo   ConversationRepository
	CacheRepo          CacheRepository
	Ranker             SimilarityRanker
	Embedder           Embedder
	Extractor          CategoryExtractor
	Composer           ResponseComposer
	Images             ImageResolver
	Encoder            EventEncoder
	Tx                 Transactor
}

// RecommendationUseCase реализует сценарии рекомендаций: по истории, из чата и для администратора.
type RecommendationUseCase struct {
	profiles      *ProfileBuilder
	filters       *FilterResolver
	ranker        SimilarityRanker
	productRepo   ProductRepository
	orderRepo     OrderRepository
	recRepo       RecommendationRepository
	outboxRepo    OutboxRepository
	conversations ConversationRepository
	cacheRepo     CacheRepository
	embedder      Embedder
	composer      ResponseComposer
	images        ImageResolver
	encoder       EventEncoder
	tx            Transactor
	opts          Options
	logger        logger.Logger
	now           func() time.Time
}

func NewRecommendationUC(deps RecommendationDeps, opts Options, logger logger.Logger) *RecommendationUseCase {
	return &RecommendationUseCase{
		profiles:      NewProfileBuilder(deps.OrderRepo, deps.ProductRepo),
		filters:       NewFilterResolver(deps.Extractor, deps.CategoryRepo, logger),
		ranker:        deps.Ranker,
		productRepo:   deps.ProductRepo,
		orderRepo:     deps.OrderRepo,
		recRepo:       deps.RecommendationRepo,
		outboxRepo:    deps.OutboxRepo,
		conversations: deps.ConversationRepo,
		cacheRepo:     deps.CacheRepo,
		embedder:      deps.Embedder,
		composer:      deps.Composer,
		images:        deps.Images,
		encoder:       deps.Encoder,
		tx:            deps.Tx,
		opts:          opts,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// GetStoredRecommendations возвращает последний сохранённый список рекомендаций в сохранённом порядке.
func (p *RecommendationUseCase) GetStoredRecommendations(ctx context.Context, customerID int64) (res *RecommendationsRes, err error) {
	const op = "RecommendationUseCase.GetStoredRecommendations"
	defer observeRequest("stored", &err)

	if customerID <= 0 {
		return nil, e.Wrap(op, e.ErrCustomerIDRequired)
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	rec, err := p.recRepo.Get(storageCtx, customerID)
	cancel()
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, err)
		}
		return nil, e.Wrap(op, e.Dependency(err))
	}

	products, err := p.summaries(ctx, rec.ProductIDs)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &RecommendationsRes{Products: products}, nil
}

// RecommendFromHistory строит профиль по заказам, ранжирует каталог и сохраняет результат.
// e.ErrNoHistory и e.ErrNoEmbeddableHistory возвращаются вызывающему: запасной сценарий выбирает он.
func (p *RecommendationUseCase) RecommendFromHistory(ctx context.Context, req *HistoryRecommendationReq) (res *RecommendationsRes, err error) {
	const op = "RecommendationUseCase.RecommendFromHistory"
	defer observeRequest("history", &err)

	if req.CustomerID <= 0 {
		return nil, e.Wrap(op, e.ErrCustomerIDRequired)
	}

	limit, err := p.resolveLimit(req.Limit, p.opts.DefaultLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	profile, err := p.buildProfile(ctx, req.CustomerID, req.Strategy)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var exclude []int64
	if req.ExcludePurchased {
		exclude = profile.PurchasedIDs
	}

	ranked, err := p.rank(ctx, NewRankQuery(profile.Vector, nil, limit, p.opts.CandidateCap, exclude))
	if err != nil {
		if errors.Is(err, e.ErrEmptyCandidateSet) {
			return emptyResult(nil), nil
		}
		return nil, e.Wrap(op, err)
	}

	ids := productIDs(ranked)
	if err := p.persist(ctx, req.CustomerID, ids); err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := p.summaries(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &RecommendationsRes{Products: products}, nil
}

// RecommendFromQuery отвечает на запрос в чате: эмбеддинг запроса, ранжирование, текстовый ответ.
// Состояние диалога сессии перезаписывается последним запросом.
func (p *RecommendationUseCase) RecommendFromQuery(ctx context.Context, req *QueryRecommendationReq) (res *ChatRecommendationRes, err error) {
	const op = "RecommendationUseCase.RecommendFromQuery"
	defer observeRequest("query", &err)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, e.Wrap(op, e.ErrQueryRequired)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, e.Wrap(op, e.ErrSessionIDRequired)
	}

	limit, err := p.resolveLimit(req.Limit, p.opts.ChatLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	conversation := p.loadConversation(ctx, req.SessionID)
	prev := conversation.Last

	embedding, err := p.embed(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	ranked, err := p.rank(ctx, NewRankQuery(p.searchVector(embedding, prev), nil, limit, p.opts.CandidateCap, nil))
	if err != nil && !errors.Is(err, e.ErrEmptyCandidateSet) {
		return nil, e.Wrap(op, err)
	}

	products, err := p.summaries(ctx, productIDs(ranked))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	conversation.Record(query, embedding, p.now())
	p.saveConversation(ctx, conversation)

	purchases := p.recentPurchases(ctx, req.CustomerID)
	reply := p.compose(ctx, chatSystemPrompt, buildChatPrompt(query, prev, purchases, products), products)

	return &ChatRecommendationRes{
		Reply:    reply,
		Products: products,
		Phase:    phaseOf(prev),
	}, nil
}

// RecommendForAdmin подбирает товары для покупателя по его профилю с фильтром категории из текста администратора
// и сохраняет результат как текущие рекомендации покупателя.
// Если у покупателя нет истории, вектором поиска служит сам текст запроса.
func (p *RecommendationUseCase) RecommendForAdmin(ctx context.Context, req *AdminRecommendationReq) (res *RecommendationsRes, err error) {
	const op = "RecommendationUseCase.RecommendForAdmin"
	defer observeRequest("admin", &err)

	if req.CustomerID <= 0 {
		return nil, e.Wrap(op, e.ErrCustomerIDRequired)
	}

	limit, err := p.resolveLimit(req.Limit, p.opts.DefaultLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	query := strings.TrimSpace(req.Query)

	filterCtx, cancel := withTimeout(ctx, p.opts.CompletionTimeout)
	category := p.filters.Resolve(filterCtx, query)
	cancel()

	vector, exclude, err := p.adminVector(ctx, req.CustomerID, query, req.ExcludePurchased)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var categoryID *int64
	if category != nil {
		categoryID = &category.ID
	}

	ranked, err := p.rank(ctx, NewRankQuery(vector, categoryID, limit, p.opts.CandidateCap, exclude))
	if err != nil {
		if errors.Is(err, e.ErrEmptyCandidateSet) {
			return emptyResult(category), nil
		}
		return nil, e.Wrap(op, err)
	}

	ids := productIDs(ranked)
	if err := p.persist(ctx, req.CustomerID, ids); err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := p.summaries(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	message := p.compose(ctx, chatSystemPrompt, buildAdminPrompt(req.CustomerID, query, category, products), products)

	return &RecommendationsRes{
		Products: products,
		Message:  message,
		Category: category,
	}, nil
}

// FeaturedProducts возвращает избранные товары каталога. Используется как запасной вариант без истории.
func (p *RecommendationUseCase) FeaturedProducts(ctx context.Context, limit int) (res *RecommendationsRes, err error) {
	const op = "RecommendationUseCase.FeaturedProducts"
	defer observeRequest("featured", &err)

	limit, err = p.resolveLimit(limit, p.opts.FeaturedLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	featured, err := p.productRepo.ListFeatured(storageCtx, limit)
	cancel()
	if err != nil {
		return nil, e.Wrap(op, e.Dependency(err))
	}

	products := make([]domain.ProductSummary, 0, len(featured))
	for i := range featured {
		products = append(products, domain.NewProductSummary(&featured[i], p.resolveImage(ctx, featured[i].Image)))
	}

	return &RecommendationsRes{Products: products}, nil
}

// EndSession забывает состояние диалога сессии.
func (p *RecommendationUseCase) EndSession(ctx context.Context, sessionID string) error {
	const op = "RecommendationUseCase.EndSession"

	if strings.TrimSpace(sessionID) == "" {
		return e.Wrap(op, e.ErrSessionIDRequired)
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	if err := p.conversations.Delete(storageCtx, sessionID); err != nil {
		return e.Wrap(op, e.Dependency(err))
	}

	return nil
}

// buildProfile строит профиль с таймаутом хранилища.
func (p *RecommendationUseCase) buildProfile(ctx context.Context, customerID int64, strategy ProfileStrategy) (*Profile, error) {
	if strategy == "" {
		strategy = p.opts.ProfileStrategy
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	return p.profiles.Build(storageCtx, customerID, strategy)
}

// adminVector выбирает вектор поиска для администратора: профиль покупателя или, без истории, эмбеддинг запроса.
func (p *RecommendationUseCase) adminVector(ctx context.Context, customerID int64, query string, excludePurchased bool) (domain.Vector, []int64, error) {
	profile, err := p.buildProfile(ctx, customerID, "")
	if err == nil {
		if excludePurchased {
			return profile.Vector, profile.PurchasedIDs, nil
		}
		return profile.Vector, nil, nil
	}

	noHistory := errors.Is(err, e.ErrNoHistory) || errors.Is(err, e.ErrNoEmbeddableHistory)
	if !noHistory || query == "" {
		return nil, nil, err
	}

	p.logger.Debugf("customer %d has no usable history, ranking by admin query", customerID)
	embedding, err := p.embed(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	return embedding, nil, nil
}

// embed получает эмбеддинг текста. Ошибка провайдера фатальна для запроса.
func (p *RecommendationUseCase) embed(ctx context.Context, text string) (domain.Vector, error) {
	if p.embedder == nil {
		return nil, e.ErrProviderNotConfigured
	}

	embedCtx, cancel := withTimeout(ctx, p.opts.EmbeddingTimeout)
	defer cancel()

	vector, err := p.embedder.Embed(embedCtx, text)
	if err != nil {
		return nil, e.Dependency(err)
	}
	if vector.IsZero() {
		return nil, e.ErrEmptyEmbedding
	}

	return vector, nil
}

// searchVector подмешивает предыдущий запрос сессии с весом FollowUpWeight.
func (p *RecommendationUseCase) searchVector(current domain.Vector, prev *domain.ConversationTurn) domain.Vector {
	if prev == nil || p.opts.FollowUpWeight <= 0 || len(prev.Embedding) != len(current) {
		return current
	}

	blended, err := current.Add(prev.Embedding.Scale(p.opts.FollowUpWeight))
	if err != nil || blended.IsZero() {
		return current
	}

	return blended
}

func (p *RecommendationUseCase) rank(ctx context.Context, q RankQuery) ([]RankedProduct, error) {
	searchCtx, cancel := withTimeout(ctx, p.opts.SearchTimeout)
	defer cancel()

	return p.ranker.Rank(searchCtx, q)
}

// persist заменяет сохранённые рекомендации покупателя и пишет событие в outbox в одной транзакции.
func (p *RecommendationUseCase) persist(ctx context.Context, customerID int64, ids []int64) error {
	const op = "RecommendationUseCase.persist"

	rec := domain.NewRecommendation(customerID, ids, p.now())
	eventID := uuid.NewString()

	payload, err := p.encoder.EncodeRecommendationUpdated(eventID, rec)
	if err != nil {
		return e.Wrap(op, err)
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	err = p.tx.Do(storageCtx, func(ctx context.Context) error {
		if err := p.recRepo.Upsert(ctx, rec); err != nil {
			return err
		}

		return p.outboxRepo.Enqueue(ctx, NewOutboxEvent(eventID, RecommendationUpdated, customerID, payload, rec.UpdatedAt))
	})
	if err != nil {
		return e.Wrap(op, e.Dependency(err))
	}

	return nil
}

// summaries возвращает карточки товаров в порядке ids. Карточки сначала ищутся в кэше,
// удалённые из каталога товары пропускаются.
func (p *RecommendationUseCase) summaries(ctx context.Context, ids []int64) ([]domain.ProductSummary, error) {
	const op = "RecommendationUseCase.summaries"

	if len(ids) == 0 {
		return []domain.ProductSummary{}, nil
	}

	cached := p.cachedProducts(ctx, ids)

	nonCacheable := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			nonCacheable = append(nonCacheable, id)
		}
	}

	fromDB := make(map[int64]domain.Product, len(nonCacheable))
	if len(nonCacheable) > 0 {
		storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
		products, err := p.productRepo.GetByIDs(storageCtx, nonCacheable)
		cancel()
		if err != nil {
			return nil, e.Wrap(op, e.Dependency(err))
		}

		for _, pr := range products {
			pr.Embedding = nil
			fromDB[pr.ID] = pr
		}
		p.cacheInBackground(products)
	}

	result := make([]domain.ProductSummary, 0, len(ids))
	for _, id := range ids {
		pr, ok := cached[id]
		if !ok {
			pr, ok = fromDB[id]
		}
		if !ok {
			p.logger.Debugf("%s: product %d not found", op, id)
			continue
		}
		result = append(result, domain.NewProductSummary(&pr, p.resolveImage(ctx, pr.Image)))
	}

	return result, nil
}

func (p *RecommendationUseCase) cachedProducts(ctx context.Context, ids []int64) map[int64]domain.Product {
	if p.cacheRepo == nil {
		return nil
	}

	cached, err := p.cacheRepo.GetProducts(ctx, ids)
	if err != nil {
		metrics.ProductCacheLookups.WithLabelValues("error").Inc()
		metrics.DegradedFeatures.WithLabelValues(metrics.FeatureProductCache).Inc()
		return nil
	}

	metrics.ProductCacheLookups.WithLabelValues("hit").Add(float64(len(cached)))
	metrics.ProductCacheLookups.WithLabelValues("miss").Add(float64(len(ids) - len(cached)))
	return cached
}

// cacheInBackground кладёт карточки в кэш, не задерживая ответ.
func (p *RecommendationUseCase) cacheInBackground(products []domain.Product) {
	if p.cacheRepo == nil || len(products) == 0 {
		return
	}

	cards := make([]domain.Product, len(products))
	for i, pr := range products {
		pr.Embedding = nil
		cards[i] = pr
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := p.cacheRepo.SetProducts(bgCtx, cards); err != nil {
			p.logger.Warnf("Failed to cache products in background: %v", err)
		}
	}()
}

// resolveImage превращает ссылку на изображение в URL. При ошибке изображение пропускается.
func (p *RecommendationUseCase) resolveImage(ctx context.Context, ref string) string {
	if ref == "" || p.images == nil {
		return ref
	}

	url, err := p.images.ResolveImage(ctx, ref)
	if err != nil {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeatureImage).Inc()
		p.logger.Warnf("failed to resolve image %q: %v", ref, err)
		return ""
	}

	return url
}

// loadConversation читает состояние сессии. Недоступное хранилище превращает сессию в новую.
func (p *RecommendationUseCase) loadConversation(ctx context.Context, sessionID string) *domain.Conversation {
	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	conversation, err := p.conversations.Get(storageCtx, sessionID)
	if err != nil {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeatureConversation).Inc()
		p.logger.Warnf("failed to load conversation %s, starting fresh: %v", sessionID, err)
		return domain.NewConversation(sessionID)
	}
	if conversation == nil {
		return domain.NewConversation(sessionID)
	}

	return conversation
}

func (p *RecommendationUseCase) saveConversation(ctx context.Context, conversation *domain.Conversation) {
	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	if err := p.conversations.Save(storageCtx, conversation); err != nil {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeatureConversation).Inc()
		p.logger.Warnf("failed to save conversation %s: %v", conversation.SessionID, err)
	}
}

// recentPurchases возвращает названия последних покупок для персонализации ответа.
func (p *RecommendationUseCase) recentPurchases(ctx context.Context, customerID int64) []string {
	if customerID <= 0 {
		return nil
	}

	storageCtx, cancel := withTimeout(ctx, p.opts.StorageTimeout)
	defer cancel()

	orders, err := p.orderRepo.GetByCustomer(storageCtx, customerID)
	if err != nil {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeaturePurchaseContext).Inc()
		p.logger.Warnf("failed to load orders of customer %d: %v", customerID, err)
		return nil
	}

	ids := purchasedProductIDs(orders)
	if len(ids) > purchaseContextSize {
		ids = ids[:purchaseContextSize]
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := p.productRepo.GetByIDs(storageCtx, ids)
	if err != nil {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeaturePurchaseContext).Inc()
		p.logger.Warnf("failed to load purchased products of customer %d: %v", customerID, err)
		return nil
	}

	names := make(map[int64]string, len(products))
	for _, pr := range products {
		names[pr.ID] = pr.Name
	}

	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			result = append(result, name)
		}
	}

	return result
}

// compose генерирует текст ответа. Недоступный провайдер заменяется детерминированным ответом.
func (p *RecommendationUseCase) compose(ctx context.Context, systemPrompt, userPrompt string, products []domain.ProductSummary) string {
	if p.composer == nil {
		return fallbackReply(products)
	}

	completionCtx, cancel := withTimeout(ctx, p.opts.CompletionTimeout)
	defer cancel()

	reply, err := p.composer.Compose(completionCtx, systemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		metrics.DegradedFeatures.WithLabelValues(metrics.FeatureChatReply).Inc()
		p.logger.Warnf("response generation failed, using fallback reply: %v", err)
		return fallbackReply(products)
	}

	return strings.TrimSpace(reply)
}

// resolveLimit подставляет значение по умолчанию для 0 и проверяет верхнюю границу.
func (p *RecommendationUseCase) resolveLimit(limit, def int) (int, error) {
	if limit == 0 {
		limit = def
	}

	if limit <= 0 || (p.opts.MaxLimit > 0 && limit > p.opts.MaxLimit) {
		return 0, e.ErrInvalidLimit
	}

	return limit, nil
}

func emptyResult(category *domain.Category) *RecommendationsRes {
	return &RecommendationsRes{
		Products: []domain.ProductSummary{},
		Message:  MsgNoCandidates,
		Category: category,
	}
}

func productIDs(ranked []RankedProduct) []int64 {
	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ProductID
	}
	return ids
}

func phaseOf(prev *domain.ConversationTurn) domain.ConversationPhase {
	if prev == nil {
		return domain.Fresh
	}
	return domain.Continuing
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// observeRequest учитывает исход операции в метриках.
func observeRequest(flow string, err *error) {
	outcome := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, e.ErrInvalidInput):
		outcome = "input_error"
	case errors.Is(*err, e.ErrNotFound):
		outcome = "not_found"
	case errors.Is(*err, e.ErrDependencyUnavailable):
		outcome = "dependency_error"
	default:
		outcome = "error"
	}

	metrics.RecommendationRequests.WithLabelValues(flow, outcome).Inc()
}
