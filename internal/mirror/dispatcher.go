package mirror

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DispatcherConfig bounds the write-behind pipeline. Every mirror call gets
// a per-attempt timeout so a slow external dependency cannot pile up
// goroutines, and transient failures get a bounded retry with backoff.
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	CallTimeout time.Duration
	MaxRetries  int
	Backoff     time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   1024,
		Workers:     2,
		CallTimeout: 10 * time.Second,
		MaxRetries:  3,
		Backoff:     500 * time.Millisecond,
	}
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Dispatcher runs mirror writes off the request path. Enqueueing never
// blocks: when the queue is full the task is dropped and counted, because
// the in-memory copy is the source of truth and the request must not stall.
type Dispatcher struct {
	cfg   DispatcherConfig
	log   *zap.Logger
	tasks chan task
	wg    sync.WaitGroup

	enqueued atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

func NewDispatcher(cfg DispatcherConfig, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:   cfg,
		log:   log,
		tasks: make(chan task, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch queues fn for background execution.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	select {
	case d.tasks <- task{name: name, run: fn}:
		d.enqueued.Add(1)
	default:
		d.dropped.Add(1)
		d.log.Warn("mirror queue full, dropping task", zap.String("task", name))
	}
}

// Close stops accepting tasks and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	close(d.tasks)
	d.wg.Wait()
}

// Stats reports enqueued/dropped/failed counters since start.
func (d *Dispatcher) Stats() (enqueued, dropped, failed int64) {
	return d.enqueued.Load(), d.dropped.Load(), d.failed.Load()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		d.execute(t)
	}
}

func (d *Dispatcher) execute(t task) {
	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(d.cfg.Backoff * time.Duration(attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.CallTimeout)
		lastErr = t.run(ctx)
		cancel()

		if lastErr == nil {
			return
		}
	}

	d.failed.Add(1)
	d.log.Error("mirror write failed after retries",
		zap.String("task", t.name),
		zap.Int("attempts", d.cfg.MaxRetries+1),
		zap.Error(lastErr),
	)
}
