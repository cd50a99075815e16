package domain

import "time"

// ConversationPhase — фаза диалога в рамках одной сессии.
type ConversationPhase int

const (
	// Fresh — в сессии ещё не было запросов
	Fresh ConversationPhase = iota
	// Continuing — есть предыдущий запрос, новый считается уточнением
	Continuing
)

func (p ConversationPhase) String() string {
	if p == Continuing {
		return "continuing"
	}
	return "fresh"
}

// ConversationTurn — один запрос пользователя и его эмбеддинг.
type ConversationTurn struct {
	Query     string
	Embedding Vector
	At        time.Time
}

// Conversation хранит только последний запрос сессии (глубина 1).
type Conversation struct {
	SessionID string
	Last      *ConversationTurn
}

func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

func (c *Conversation) Phase() ConversationPhase {
	if c == nil || c.Last == nil {
		return Fresh
	}
	return Continuing
}

// Record заменяет сохранённый запрос новым и возвращает предыдущий (nil для Fresh).
func (c *Conversation) Record(query string, embedding Vector, at time.Time) *ConversationTurn {
	prev := c.Last
	c.Last = &ConversationTurn{
		Query:     query,
		Embedding: embedding.Clone(),
		At:        at,
	}

	return prev
}
