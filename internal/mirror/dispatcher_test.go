package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   8,
		Workers:     1,
		CallTimeout: time.Second,
		MaxRetries:  2,
		Backoff:     time.Millisecond,
	}
}

func TestDispatchRunsTask(t *testing.T) {
	d := NewDispatcher(testConfig(), zap.NewNop())

	var ran atomic.Bool
	d.Dispatch("save_click", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	d.Close()

	if !ran.Load() {
		t.Error("task did not run")
	}
	enqueued, dropped, failed := d.Stats()
	if enqueued != 1 || dropped != 0 || failed != 0 {
		t.Errorf("stats = %d/%d/%d", enqueued, dropped, failed)
	}
}

func TestDispatchRetriesTransientFailure(t *testing.T) {
	d := NewDispatcher(testConfig(), zap.NewNop())

	var attempts atomic.Int32
	d.Dispatch("save_click", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	d.Close()

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if _, _, failed := d.Stats(); failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}
}

func TestDispatchGivesUpAfterMaxRetries(t *testing.T) {
	d := NewDispatcher(testConfig(), zap.NewNop())

	var attempts atomic.Int32
	d.Dispatch("save_click", func(ctx context.Context) error {
		attempts.Add(1)
		return errors.New("permanent")
	})
	d.Close()

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want MaxRetries+1 = 3", got)
	}
	if _, _, failed := d.Stats(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestDispatchDropsWhenQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 1
	d := NewDispatcher(cfg, zap.NewNop())

	release := make(chan struct{})
	blocker := func(ctx context.Context) error {
		<-release
		return nil
	}

	// First task occupies the worker, second fills the queue, the rest drop.
	d.Dispatch("a", blocker)
	time.Sleep(10 * time.Millisecond)
	d.Dispatch("b", blocker)
	d.Dispatch("c", blocker)
	d.Dispatch("d", blocker)

	_, dropped, _ := d.Stats()
	if dropped == 0 {
		t.Error("expected drops with a full queue")
	}

	close(release)
	d.Close()
}
