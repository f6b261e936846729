package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/anigawade45/grocery-market/internal/kafka"
	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Dispatcher consumes notify.requested events and persists them as
// notification rows. Redelivery is collapsed via Redis dedup on event_id.
type Dispatcher struct {
	Repo  *Repo
	Redis *redis.Client
	Log   *zap.Logger
}

func (d *Dispatcher) HandleNotifyRequested(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message, log and commit past it
		d.Log.Warn("bad envelope", zap.Error(err))
		return nil
	}
	if env.EventType != market.EventNotifyRequested {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, d.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[market.NotifyRequestedPayload](env.Payload)
	if err != nil {
		d.Log.Warn("bad payload", zap.Error(err), zap.String("event_id", env.EventID))
		return nil
	}

	if err := d.Repo.Insert(ctx, p.UserID, p.Type, p.Message); err != nil {
		return err // no dedup mark, consumer retries
	}
	_ = d.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	d.Log.Info("notification delivered",
		zap.String("user_id", p.UserID),
		zap.String("type", p.Type),
	)
	return nil
}
