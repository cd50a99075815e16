package kafka

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gt"
	"github.com/segmentio/kafka-go"
)

type outboxQueueMock struct {
	pending   []*usecase.OutboxEvent
	published []int64
	released  []int64
	failed    []int64
	stale     int64
}

func (m *outboxQueueMock) Claim(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	n := min(limit, len(m.pending))
	batch := m.pending[:n]
	m.pending = m.pending[n:]
	return batch, nil
}

func (m *outboxQueueMock) MarkPublished(_ context.Context, id int64) error {
	m.published = append(m.published, id)
	return nil
}

func (m *outboxQueueMock) Release(_ context.Context, id int64) error {
	m.released = append(m.released, id)
	return nil
}

func (m *outboxQueueMock) MarkFailed(_ context.Context, id int64) error {
	m.failed = append(m.failed, id)
	return nil
}

func (m *outboxQueueMock) ReleaseStale(context.Context, time.Duration) (int64, error) {
	return m.stale, nil
}

type publisherMock struct {
	keys  []int64
	errFn func(customerID int64) error
}

func (m *publisherMock) Publish(_ context.Context, event *usecase.OutboxEvent) error {
	if m.errFn != nil {
		if err := m.errFn(event.CustomerID); err != nil {
			return err
		}
	}
	m.keys = append(m.keys, event.CustomerID)
	return nil
}

func failFor(err error, ids ...int64) func(int64) error {
	return func(id int64) error {
		if slices.Contains(ids, id) {
			return err
		}
		return nil
	}
}

func events(n int) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, n)
	for i := 1; i <= n; i++ {
		ev := usecase.NewOutboxEvent("ev", usecase.RecommendationUpdated, int64(100+i), []byte("x"), time.Now())
		ev.ID = int64(i)
		out = append(out, ev)
	}
	return out
}

func TestOutboxWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	connRefused := errors.New("dial tcp: connection refused")

	t.Run("publishes keyed by customer and marks published", func(t *testing.T) {
		queue := &outboxQueueMock{pending: events(3)}
		publisher := &publisherMock{}
		w := NewOutboxWorker(queue, logger.Nop{}, publisher, "", 2)

		hasMore, err := w.processBatch(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, hasMore).True()

		hasMore, err = w.processBatch(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, hasMore).False()

		gt.Value(t, publisher.keys).Equal([]int64{101, 102, 103})
		gt.Value(t, queue.published).Equal([]int64{1, 2, 3})
	})

	t.Run("temporary failures go back to pending", func(t *testing.T) {
		queue := &outboxQueueMock{pending: events(2)}
		publisher := &publisherMock{errFn: failFor(connRefused, 102)}
		w := NewOutboxWorker(queue, logger.Nop{}, publisher, "", 10)

		_, err := w.processBatch(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, queue.published).Equal([]int64{1})
		gt.Value(t, queue.released).Equal([]int64{2})
		gt.Value(t, len(queue.failed)).Equal(0)
	})

	t.Run("rejected messages are marked failed", func(t *testing.T) {
		queue := &outboxQueueMock{pending: events(2)}
		publisher := &publisherMock{errFn: failFor(kafka.MessageSizeTooLarge, 101)}
		w := NewOutboxWorker(queue, logger.Nop{}, publisher, "", 10)

		_, err := w.processBatch(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, queue.failed).Equal([]int64{1})
		gt.Value(t, queue.published).Equal([]int64{2})
	})

	t.Run("whole batch retried stops draining", func(t *testing.T) {
		queue := &outboxQueueMock{pending: events(2)}
		publisher := &publisherMock{errFn: failFor(connRefused, 101, 102)}
		w := NewOutboxWorker(queue, logger.Nop{}, publisher, "", 2)

		hasMore, err := w.processBatch(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, hasMore).False()
		gt.Value(t, queue.released).Equal([]int64{1, 2})
	})
}

func TestRejected(t *testing.T) {
	gt.Bool(t, rejected(kafka.MessageSizeTooLarge)).True()
	gt.Bool(t, rejected(fmt.Errorf("publish: %w", kafka.InvalidTopic))).True()
	gt.Bool(t, rejected(kafka.LeaderNotAvailable)).False()
	gt.Bool(t, rejected(errors.New("read: connection reset by peer"))).False()
	gt.Bool(t, rejected(kafka.WriteErrors{kafka.MessageSizeTooLarge})).True()
	gt.Bool(t, rejected(kafka.WriteErrors{kafka.MessageSizeTooLarge, kafka.LeaderNotAvailable})).False()
}

func TestMessage_Headers(t *testing.T) {
	ev := usecase.NewOutboxEvent("evt-7", usecase.RecommendationUpdated, 42, []byte("{}"), time.Now())
	msg := message(ev)

	gt.Value(t, string(msg.Key)).Equal("42")
	gt.Value(t, msg.Headers).Equal([]kafka.Header{
		{Key: HeaderEventID, Value: []byte("evt-7")},
		{Key: HeaderEventType, Value: []byte("recommendation.updated")},
	})
}

func TestEventEncoder(t *testing.T) {
	at := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.NewRecommendation(42, []int64{3, 1, 2}, at)

	data, err := NewEventEncoder().EncodeRecommendationUpdated("evt-1", rec)
	gt.NoError(t, err).Required()

	eventID, decoded, err := DecodeRecommendationUpdated(data)
	gt.NoError(t, err).Required()
	gt.Value(t, eventID).Equal("evt-1")
	gt.Value(t, decoded.CustomerID).Equal(int64(42))
	gt.Value(t, decoded.ProductIDs).Equal([]int64{3, 1, 2})
	gt.Bool(t, decoded.UpdatedAt.Equal(at)).True()
}
