package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	next    int
	commits []int64
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if f.next < len(f.msgs) {
		m := f.msgs[f.next]
		f.next++
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.commits = append(f.commits, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committed() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, len(f.commits))
	copy(out, f.commits)
	return out
}

func messages(n int) []kafka.Message {
	out := make([]kafka.Message, n)
	for i := range out {
		out[i] = kafka.Message{Offset: int64(i), Value: []byte{byte(i)}}
	}
	return out
}

func waitCommits(t *testing.T, r *fakeReader, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.committed()) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d commits, got %v", want, r.committed())
}

// A retrying earlier message must not be overtaken in the commit log by
// later messages that finished first.
func TestConsumerCommitsInOrderPastRetries(t *testing.T) {
	r := &fakeReader{msgs: messages(3)}
	c := &Consumer{r: r, log: zap.NewNop(), workers: 2}

	var mu sync.Mutex
	attempts := map[int64]int{}
	h := func(ctx context.Context, m kafka.Message) error {
		mu.Lock()
		attempts[m.Offset]++
		n := attempts[m.Offset]
		mu.Unlock()
		if m.Offset == 0 && n <= 2 {
			return errors.New("downstream unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan error, 1)
	go func() { exited <- c.Start(ctx, h) }()

	waitCommits(t, r, 3)
	cancel()
	if err := <-exited; err != nil {
		t.Fatalf("consumer exit: %v", err)
	}

	got := r.committed()
	wantOrder := []int64{0, 1, 2}
	for i, off := range wantOrder {
		if got[i] != off {
			t.Fatalf("expected commit order %v, got %v", wantOrder, got)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts[0] != 3 {
		t.Fatalf("expected offset 0 handled 3 times, got %d", attempts[0])
	}
}

// A message that never succeeds is dropped after the retry cap instead of
// wedging the partition behind it.
func TestConsumerDropsPoisonAfterRetryCap(t *testing.T) {
	r := &fakeReader{msgs: messages(2)}
	c := &Consumer{r: r, log: zap.NewNop(), workers: 2}

	var mu sync.Mutex
	attempts := 0
	h := func(ctx context.Context, m kafka.Message) error {
		if m.Offset == 0 {
			mu.Lock()
			attempts++
			mu.Unlock()
			return errors.New("permanently broken")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan error, 1)
	go func() { exited <- c.Start(ctx, h) }()

	waitCommits(t, r, 2)
	cancel()
	if err := <-exited; err != nil {
		t.Fatalf("consumer exit: %v", err)
	}

	got := r.committed()
	if got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected commits [0 1], got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != maxHandlerAttempts {
		t.Fatalf("expected %d attempts, got %d", maxHandlerAttempts, attempts)
	}
}
