package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/metrics"
	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/jitter"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
)

const (
	defaultBatchSize = 10
	// период резервного опроса на случай потерянного NOTIFY
	pollInterval = 30 * time.Second
	// через сколько событие в processing считается брошенным упавшей репликой
	staleAfter = 5 * time.Minute
)

var reconnectBackoff = jitter.Backoff{Base: time.Second, Max: 30 * time.Second, Jitter: jitter.DefaultJitter}

// Publisher отправляет событие в брокер.
type Publisher interface {
	Publish(ctx context.Context, event *usecase.OutboxEvent) error
}

// OutboxQueue — операции над outbox, которые нужны воркеру публикации.
type OutboxQueue interface {
	Claim(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// OutboxWorker публикует события outbox в Kafka. Новые события приходят через LISTEN/NOTIFY,
// временно неудачные возвращаются в pending, отвергнутые брокером помечаются failed.
type OutboxWorker struct {
	queue     OutboxQueue
	logger    logger.Logger
	publisher Publisher
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	batchSize int
}

func NewOutboxWorker(
	queue OutboxQueue,
	logger logger.Logger,
	publisher Publisher,
	dbConnStr string,
	batchSize int,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &OutboxWorker{
		queue:     queue,
		logger:    logger,
		publisher: publisher,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
		batchSize: batchSize,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.wg.Add(3)
	go func() {
		defer w.wg.Done()
		<-w.stop
		cancel()
	}()

	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	// Запускаем слушатель уведомлений
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// run разбирает остатки при старте и дальше периодически опрашивает таблицу.
func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.releaseStale(ctx)
	w.drain(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.releaseStale(ctx)
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) releaseStale(ctx context.Context) {
	n, err := w.queue.ReleaseStale(ctx, staleAfter)
	if err != nil {
		w.logger.Warnf("release stale outbox events: %v", err)
		return
	}
	if n > 0 {
		w.logger.Warnf("%d outbox events were stuck in processing, returned to pending", n)
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err := c.Exec(ctx, "LISTEN "+pgdb.OutboxChannel); err != nil {
			_ = c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", pgdb.OutboxChannel)
		return nil
	}

	for attempt := 0; ; attempt++ {
		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("LISTEN connect failed: %v", err)
				if reconnectBackoff.Wait(ctx, attempt) != nil {
					return
				}
				continue
			}
			attempt = 0
		}

		waitCtx, cancel := context.WithTimeout(ctx, pollInterval)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if ctx.Err() != nil {
			_ = conn.Close(context.Background())
			return
		}

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == pgdb.OutboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// processBatch публикует одну порцию событий. true означает, что порция была полной и стоит повторить.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.queue.Claim(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	retried := 0
	for _, event := range events {
		err := w.publisher.Publish(ctx, event)
		switch {
		case err == nil:
			metrics.OutboxPublished.WithLabelValues("published").Inc()
			if err := w.queue.MarkPublished(ctx, event.ID); err != nil {
				w.logger.Warnf("mark event %s published: %v", event.EventID, err)
			}
		case rejected(err):
			metrics.OutboxPublished.WithLabelValues("failed").Inc()
			w.logger.Errorf(err, "broker rejected event %s, giving up", event.EventID)
			if err := w.queue.MarkFailed(ctx, event.ID); err != nil {
				w.logger.Warnf("mark event %s failed: %v", event.EventID, err)
			}
		default:
			retried++
			metrics.OutboxPublished.WithLabelValues("retry").Inc()
			w.logger.Warnf("publish event %s failed, will retry: %v", event.EventID, err)
			if err := w.queue.Release(ctx, event.ID); err != nil {
				w.logger.Warnf("return event %s to pending: %v", event.EventID, err)
			}
		}
	}

	// вся порция ушла на повтор: брокер недоступен, ждём следующего уведомления или опроса
	if retried == len(events) {
		return false, nil
	}

	return len(events) == w.batchSize, nil
}

// rejected сообщает, что брокер окончательно отверг сообщение и повтор не поможет.
// Сетевые и неизвестные ошибки считаются временными.
func rejected(err error) bool {
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, werr := range writeErrs {
			if werr != nil && !rejected(werr) {
				return false
			}
		}
		return writeErrs.Count() > 0
	}

	var kerr kafka.Error
	return errors.As(err, &kerr) && !kerr.Temporary()
}
