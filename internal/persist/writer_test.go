package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriterRunsJobsInOrder(t *testing.T) {
	w := NewWriter(8, zap.NewNop())
	var (
		mu  sync.Mutex
		got []string
	)
	record := func(name string) func(context.Context) error {
		return func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			mu.Lock()
			got = append(got, name)
			mu.Unlock()
			return nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.True(t, w.Enqueue("a", record("a")))
	require.True(t, w.Enqueue("b", func(context.Context) error { return errors.New("boom") }))
	require.True(t, w.Enqueue("c", record("c")))

	require.Eventually(t, func() bool { return w.Done() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "c"}, got, "a failing job does not stop the queue")
}

func TestWriterDropsWhenFullAndFlushesOnStop(t *testing.T) {
	w := NewWriter(1, zap.NewNop())
	ran := 0
	assert.True(t, w.Enqueue("first", func(context.Context) error { ran++; return nil }))
	assert.False(t, w.Enqueue("second", func(context.Context) error { ran++; return nil }))
	assert.Equal(t, uint64(1), w.Dropped())
	assert.Equal(t, 1, w.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 1, ran)
	assert.Zero(t, w.Pending())
}
