package notify

import (
	"context"
	"time"

	kafkax "github.com/anigawade45/grocery-market/internal/kafka"
	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Notification delivery types.
const (
	TypeOrderPlaced    = "order_placed"
	TypeOrderPaid      = "order_paid"
	TypeOrderCancelled = "order_cancelled"
	TypeOrderStatus    = "order_status"
	TypeReviewReply    = "review_reply"
)

// Sender is fire-and-forget: implementations never block the caller on
// delivery and never surface delivery failures as errors.
type Sender interface {
	Send(ctx context.Context, userID, typ, message string)
}

// KafkaSender publishes notification requests for cmd/notifier to deliver.
type KafkaSender struct {
	Producer *kafkax.Producer
	Service  string
}

func (s *KafkaSender) Send(ctx context.Context, userID, typ, message string) {
	ev := market.Envelope{
		EventID:      uuid.NewString(),
		EventType:    market.EventNotifyRequested,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     s.Service,
		Payload: kafkax.MustMarshal(market.NotifyRequestedPayload{
			UserID:  userID,
			Type:    typ,
			Message: message,
		}),
	}
	s.Producer.Publish(market.PartitionKey(userID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventNotifyRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
