package converter

import "time"

// ProductRedisModel — карточка товара в кэше. Эмбеддинг в кэш не кладётся.
type ProductRedisModel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id"`
	IsFeatured  bool   `json:"is_featured"`
	IsArchived  bool   `json:"is_archived"`
}

// ConversationRedisModel — последний запрос сессии.
type ConversationRedisModel struct {
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Embedding []float32 `json:"embedding"`
	At        time.Time `json:"at"`
}
