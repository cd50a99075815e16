package usecase

import (
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
)

// RECOMMENDATION USECASE

// ProfileStrategy определяет, как история покупок сводится к одному вектору.
type ProfileStrategy string

const (
	// ProfileMean — среднее эмбеддингов всех купленных товаров
	ProfileMean ProfileStrategy = "mean"
	// ProfileLatest — эмбеддинг последней покупки с эмбеддингом
	ProfileLatest ProfileStrategy = "latest"
)

// Valid сообщает, известна ли стратегия. Пустая строка означает стратегию по умолчанию.
func (s ProfileStrategy) Valid() bool {
	return s == "" || s == ProfileMean || s == ProfileLatest
}

// Profile — вектор интересов покупателя.
type Profile struct {
	Vector       domain.Vector
	Contributing int     // сколько товаров вошло в вектор
	PurchasedIDs []int64 // все купленные товары, от новых к старым
}

// HistoryRecommendationReq — запрос рекомендаций по истории заказов.
type HistoryRecommendationReq struct {
	CustomerID       int64
	Limit            int
	ExcludePurchased bool
	Strategy         ProfileStrategy
}

// QueryRecommendationReq — запрос рекомендаций из чата.
type QueryRecommendationReq struct {
	SessionID  string
	CustomerID int64
	Query      string
	Limit      int
}

// AdminRecommendationReq — запрос администратора на подбор рекомендаций для покупателя.
type AdminRecommendationReq struct {
	CustomerID       int64
	Query            string
	Limit            int
	ExcludePurchased bool
}

// RecommendationsRes — список товаров и пояснение для клиента.
type RecommendationsRes struct {
	Products []domain.ProductSummary
	Message  string
	Category *domain.Category // разрешённый фильтр категории, nil — без фильтра
}

// ChatRecommendationRes — ответ чата.
type ChatRecommendationRes struct {
	Reply    string
	Products []domain.ProductSummary
	Phase    domain.ConversationPhase // фаза диалога на момент запроса
}

// RankQuery — параметры поиска ближайших товаров.
type RankQuery struct {
	Vector       domain.Vector
	CategoryID   *int64
	Limit        int
	CandidateCap int
	Exclude      map[int64]struct{}
}

func (q RankQuery) excluded(id int64) bool {
	_, ok := q.Exclude[id]
	return ok
}

// RankedProduct — товар и его косинусная близость к запросу.
type RankedProduct struct {
	ProductID int64
	Score     float64
}

// SyncIndexRes — итог синхронизации векторного индекса.
type SyncIndexRes struct {
	Upserted int
	Deleted  int
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed"
)

type OutboxEventType string

const (
	RecommendationUpdated OutboxEventType = "recommendation.updated"
)

// OutboxEvent — событие, записанное в одной транзакции с изменением данных.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	CustomerID  int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewOutboxEvent(eventID string, eventType OutboxEventType, customerID int64, payload []byte, createdAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:    eventID,
		EventType:  eventType,
		CustomerID: customerID,
		Payload:    payload,
		Status:     Pending,
		CreatedAt:  createdAt,
	}
}

func NewRankQuery(vector domain.Vector, categoryID *int64, limit, candidateCap int, exclude []int64) RankQuery {
	q := RankQuery{
		Vector:       vector,
		CategoryID:   categoryID,
		Limit:        limit,
		CandidateCap: candidateCap,
	}

	if len(exclude) > 0 {
		q.Exclude = make(map[int64]struct{}, len(exclude))
		for _, id := range exclude {
			q.Exclude[id] = struct{}{}
		}
	}

	return q
}
