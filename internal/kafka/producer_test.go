package kafka

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestPublishAfterShutdownIsDropped(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "test.topic", 8, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	// a handler still draining during shutdown may publish; the message is
	// dropped, not panicked on
	p.Publish([]byte("k"), []byte("v"))
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "test.topic", 8, zap.NewNop())
	p.Start(context.Background())

	p.Close()
	p.Close()
	p.WaitClosed()
	p.Publish([]byte("k"), []byte("v"))
}
