package persist

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// writeTimeout 單筆寫入的時限
const writeTimeout = 5 * time.Second

// Job is one queued database write.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Writer runs database writes on its own goroutine so the game loop never
// waits on the database. A full queue drops the job with a warning.
type Writer struct {
	jobs    chan Job
	log     *zap.Logger
	dropped atomic.Uint64
	done    atomic.Uint64
}

func NewWriter(size int, log *zap.Logger) *Writer {
	if size <= 0 {
		size = 1024
	}
	return &Writer{jobs: make(chan Job, size), log: log.Named("writer")}
}

// Enqueue schedules fn without blocking. Returns false when the job was dropped.
func (w *Writer) Enqueue(name string, fn func(ctx context.Context) error) bool {
	select {
	case w.jobs <- Job{Name: name, Run: fn}:
		return true
	default:
		w.dropped.Add(1)
		w.log.Warn("write queue full, job dropped", zap.String("job", name), zap.Int("capacity", cap(w.jobs)))
		return false
	}
}

// Run executes queued jobs until ctx is canceled, then flushes whatever is
// still queued before returning.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return nil
		case j := <-w.jobs:
			w.exec(context.Background(), j)
		}
	}
}

func (w *Writer) flush() {
	n := 0
	for {
		select {
		case j := <-w.jobs:
			w.exec(context.Background(), j)
			n++
		default:
			if n > 0 {
				w.log.Info("write queue flushed", zap.Int("jobs", n))
			}
			return
		}
	}
}

func (w *Writer) exec(parent context.Context, j Job) {
	ctx, cancel := context.WithTimeout(parent, writeTimeout)
	defer cancel()
	if err := j.Run(ctx); err != nil {
		w.log.Error("write failed", zap.String("job", j.Name), zap.Error(err))
	}
	w.done.Add(1)
}

// Pending returns the number of queued jobs.
func (w *Writer) Pending() int { return len(w.jobs) }

// Dropped returns how many jobs were dropped on a full queue.
func (w *Writer) Dropped() uint64 { return w.dropped.Load() }

// Done returns how many jobs have been executed.
func (w *Writer) Done() uint64 { return w.done.Load() }
