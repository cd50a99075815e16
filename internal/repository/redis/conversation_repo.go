package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/redis/converter"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

// ConversationRepo хранит последний запрос сессии в Redis, по одному ключу на сессию.
// Запись перезаписывается целиком, TTL продлевается при каждом запросе.
type ConversationRepo struct {
	client goredis.Cmdable
	conv   converter.ConversationConverter
	ttl    time.Duration
}

func NewConversationRepo(client goredis.Cmdable, conv converter.ConversationConverter, ttl time.Duration) *ConversationRepo {
	return &ConversationRepo{client: client, conv: conv, ttl: ttl}
}

// Get возвращает nil без ошибки для неизвестной или истёкшей сессии.
func (c *ConversationRepo) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ConversationRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

func (c *ConversationRepo) Save(ctx context.Context, conversation *domain.Conversation) error {
	model := c.conv.ToRedisModel(conversation)
	if model == nil {
		return c.Delete(ctx, conversation.SessionID)
	}

	data, err := json.Marshal(model)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Set(ctx, c.key(conversation.SessionID), data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *ConversationRepo) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *ConversationRepo) key(sessionID string) string {
	return fmt.Sprintf("conversation:%s", sessionID)
}
