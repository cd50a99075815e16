package redis

import (
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/redis/converter"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/gt"
)

func TestDecodeProduct(t *testing.T) {
	conv := converter.ProductConverter{}
	product := domain.Product{ID: 5, Name: "Boots", Price: 129900, Image: "boots.jpg", Embedding: domain.Vector{1, 2}}
	data, err := json.Marshal(conv.ToRedisModel(&product))
	gt.NoError(t, err).Required()

	for _, val := range []any{string(data), data} {
		model, err := decodeProduct(val)
		gt.NoError(t, err).Required()

		got := conv.ToEntity(model)
		gt.Value(t, got.ID).Equal(int64(5))
		gt.Value(t, got.Price).Equal(int64(129900))
		gt.Value(t, got.Image).Equal("boots.jpg")
		gt.Value(t, got.Embedding).Nil()
	}
}

func TestDecodeProduct_MissAndGarbage(t *testing.T) {
	model, err := decodeProduct(nil)
	gt.NoError(t, err).Required()
	gt.Value(t, model).Nil()

	_, err = decodeProduct(42)
	gt.Error(t, err)

	_, err = decodeProduct("{not json")
	gt.Error(t, err)
}

func TestProductKeys(t *testing.T) {
	gt.Value(t, productKeys([]int64{1, 42})).Equal([]string{"product:1", "product:42"})
}

func TestConversationConverter(t *testing.T) {
	conv := converter.ConversationConverter{}

	gt.Value(t, conv.ToRedisModel(domain.NewConversation("s"))).Nil()

	c := domain.NewConversation("s")
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c.Record("red shoes", domain.Vector{0.5, 0.5}, at)

	restored := conv.ToEntity(conv.ToRedisModel(c))
	gt.Value(t, restored.SessionID).Equal("s")
	gt.Value(t, restored.Phase()).Equal(domain.Continuing)
	gt.Value(t, restored.Last.Query).Equal("red shoes")
	gt.Value(t, restored.Last.Embedding).Equal(domain.Vector{0.5, 0.5})
}
