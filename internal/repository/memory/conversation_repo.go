// Package memory хранит состояние диалогов в памяти процесса.
package memory

import (
	"context"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ConversationRepo — ограниченный по размеру LRU сессий с TTL.
// На каждую сессию хранится ровно одна запись, Save перезаписывает её.
type ConversationRepo struct {
	cache *expirable.LRU[string, domain.ConversationTurn]
}

func NewConversationRepo(size int, ttl time.Duration) *ConversationRepo {
	return &ConversationRepo{
		cache: expirable.NewLRU[string, domain.ConversationTurn](size, nil, ttl),
	}
}

// Get возвращает копию состояния, чтобы вызывающий не мог изменить хранимое значение.
// Для неизвестной сессии возвращается nil.
func (c *ConversationRepo) Get(_ context.Context, sessionID string) (*domain.Conversation, error) {
	turn, ok := c.cache.Get(sessionID)
	if !ok {
		return nil, nil
	}

	conversation := domain.NewConversation(sessionID)
	conversation.Record(turn.Query, turn.Embedding, turn.At)
	return conversation, nil
}

func (c *ConversationRepo) Save(_ context.Context, conversation *domain.Conversation) error {
	if conversation.Last == nil {
		c.cache.Remove(conversation.SessionID)
		return nil
	}

	turn := *conversation.Last
	turn.Embedding = turn.Embedding.Clone()
	c.cache.Add(conversation.SessionID, turn)
	return nil
}

func (c *ConversationRepo) Delete(_ context.Context, sessionID string) error {
	c.cache.Remove(sessionID)
	return nil
}

func (c *ConversationRepo) Len() int {
	return c.cache.Len()
}
