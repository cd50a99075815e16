package kafka

import (
	"time"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventEncoder сериализует события в protobuf Struct: схема события не требует отдельного .proto.
type EventEncoder struct{}

func NewEventEncoder() *EventEncoder {
	return &EventEncoder{}
}

func (EventEncoder) EncodeRecommendationUpdated(eventID string, rec *domain.Recommendation) ([]byte, error) {
	ids := make([]any, len(rec.ProductIDs))
	for i, id := range rec.ProductIDs {
		ids[i] = id
	}

	event, err := structpb.NewStruct(map[string]any{
		"event_id":    eventID,
		"event_type":  string(usecase.RecommendationUpdated),
		"customer_id": rec.CustomerID,
		"product_ids": ids,
		"updated_at":  rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return proto.Marshal(event)
}

// DecodeRecommendationUpdated восстанавливает событие. Используется потребителями и в тестах.
func DecodeRecommendationUpdated(data []byte) (string, *domain.Recommendation, error) {
	var event structpb.Struct
	if err := proto.Unmarshal(data, &event); err != nil {
		return "", nil, e.Wrap(whereami.WhereAmI(), err)
	}

	fields := event.GetFields()

	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"].GetStringValue())
	if err != nil {
		return "", nil, e.Wrap(whereami.WhereAmI(), err)
	}

	values := fields["product_ids"].GetListValue().GetValues()
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		ids = append(ids, int64(v.GetNumberValue()))
	}

	rec := domain.NewRecommendation(int64(fields["customer_id"].GetNumberValue()), ids, updatedAt)
	return fields["event_id"].GetStringValue(), rec, nil
}
