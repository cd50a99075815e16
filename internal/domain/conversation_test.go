package domain_test

import (
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/m-mizutani/gt"
)

func TestConversation(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new session is fresh", func(t *testing.T) {
		c := domain.NewConversation("s1")
		gt.Value(t, c.Phase()).Equal(domain.Fresh)
		gt.Value(t, c.Last).Nil()
	})

	t.Run("record keeps only the latest turn", func(t *testing.T) {
		c := domain.NewConversation("s1")

		prev := c.Record("A", domain.Vector{1, 0}, now)
		gt.Value(t, prev).Nil()
		gt.Value(t, c.Phase()).Equal(domain.Continuing)

		prev = c.Record("B", domain.Vector{0, 1}, now.Add(time.Minute))
		gt.Value(t, prev).NotNil()
		gt.Value(t, prev.Query).Equal("A")
		gt.Value(t, c.Last.Query).Equal("B")
		gt.Value(t, c.Last.Embedding).Equal(domain.Vector{0, 1})
	})

	t.Run("stored embedding is a copy", func(t *testing.T) {
		c := domain.NewConversation("s1")
		v := domain.Vector{1, 2}
		c.Record("q", v, now)
		v[0] = 42
		gt.Value(t, c.Last.Embedding).Equal(domain.Vector{1, 2})
	})

	t.Run("nil conversation is fresh", func(t *testing.T) {
		var c *domain.Conversation
		gt.Value(t, c.Phase()).Equal(domain.Fresh)
	})
}
