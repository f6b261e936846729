package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler must return nil only when the message was processed and the offset
// may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// reader is the slice of kafka.Reader the consumer uses.
type reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       reader
	log     *zap.Logger
	workers int
}

const (
	maxHandlerAttempts = 5
	retryBackoff       = 200 * time.Millisecond
)

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, log: log.With(zap.String("topic", topic), zap.String("group", group)), workers: workers}
}

type task struct {
	m    kafka.Message
	done chan struct{}
}

// Start reads until ctx ends. Messages fan out to the worker pool, but
// offsets are committed strictly in read order and each only after its
// handler accepted the message, so a worker finishing a later message never
// commits past an earlier one that is still retrying.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan *task, 1024)
	inOrder := make(chan *task, 1024)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				c.handle(ctx, h, t)
			}
		}()
	}

	commitsDone := make(chan struct{})
	go func() {
		defer close(commitsDone)
		for t := range inOrder {
			select {
			case <-t.done:
			case <-ctx.Done():
				return
			}
			if err := c.r.CommitMessages(ctx, t.m); err != nil {
				c.log.Warn("offset commit failed", zap.Error(err))
			}
		}
	}()

	stop := func() {
		close(jobs)
		wg.Wait()
		close(inOrder)
		<-commitsDone
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			stop()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		t := &task{m: m, done: make(chan struct{})}
		select {
		case inOrder <- t:
		case <-ctx.Done():
			stop()
			return nil
		}
		select {
		case jobs <- t:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

// handle retries a failing handler with backoff. A message that keeps
// failing is dropped after maxHandlerAttempts so it cannot wedge the
// partition behind it.
func (c *Consumer) handle(ctx context.Context, h Handler, t *task) {
	for attempt := 1; ; attempt++ {
		err := h(ctx, t.m)
		if err == nil {
			close(t.done)
			return
		}
		if attempt >= maxHandlerAttempts {
			c.log.Error("message dropped after retries",
				zap.Error(err), zap.Int64("offset", t.m.Offset), zap.Int("attempts", attempt))
			close(t.done)
			return
		}
		c.log.Warn("handler failed, retrying",
			zap.Error(err), zap.Int64("offset", t.m.Offset), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryBackoff):
		}
	}
}
