package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
)

// Producer публикует события outbox в топик рекомендаций.
// Ключом сообщения служит id покупателя, поэтому события одного покупателя идут в одну партицию по порядку.
type Producer struct {
	writer *kafka.Writer
	cfg    *cfg.KafkaCfg
}

func NewProducer(log logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
				log.Warnf("kafka writer: "+msg, args...)
			}),
		},
		cfg: cfg,
	}
}

// Publish синхронно отправляет событие и ждёт подтверждения всех реплик.
func (p *Producer) Publish(ctx context.Context, event *usecase.OutboxEvent) error {
	return p.writer.WriteMessages(ctx, message(event))
}

func message(event *usecase.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.CustomerID, 10)),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.EventID)},
			{Key: HeaderEventType, Value: []byte(event.EventType)},
		},
	}
}

// EnsureTopic создаёт топик через контроллер кластера, если его ещё нет.
func (p *Producer) EnsureTopic(ctx context.Context) error {
	if len(p.cfg.Brokers) == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrIncorrectEnvVariable)
	}

	conn, err := kafka.DialContext(ctx, p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}
	defer conn.Close()

	if partitions, err := conn.ReadPartitions(p.cfg.Topic); err == nil && len(partitions) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}

	ctrlConn, err := kafka.DialContext(ctx, p.cfg.NetworkMode,
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}
	defer ctrlConn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = ctrlConn.SetDeadline(deadline)
	}

	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             p.cfg.Topic,
		NumPartitions:     p.cfg.Partitions,
		ReplicationFactor: p.cfg.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("create topic %s: %w", p.cfg.Topic, err))
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
