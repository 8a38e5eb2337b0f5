package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_RunsOnlyLatest(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	var lastGen atomic.Uint64
	for i := 0; i < 5; i++ {
		d.Trigger(func(ctx context.Context, gen uint64) {
			calls.Add(1)
			lastGen.Store(gen)
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)
	latest := d.Generation()
	d.Close()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
	if lastGen.Load() != latest {
		t.Errorf("ran generation %d, latest is %d", lastGen.Load(), latest)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func(ctx context.Context, gen uint64) {
		calls.Add(1)
	})
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	d.Close()

	if calls.Load() != 0 {
		t.Errorf("cancelled task should not run")
	}
}

func TestDebouncer_StaleGenerationAfterNewTrigger(t *testing.T) {
	d := NewDebouncer(0)

	started := make(chan uint64, 1)
	release := make(chan struct{})
	cancelled := make(chan bool, 1)

	d.Trigger(func(ctx context.Context, gen uint64) {
		started <- gen
		<-release
		cancelled <- ctx.Err() != nil
	})

	gen := <-started
	if !d.IsCurrent(gen) {
		t.Fatal("running task should be current before a new trigger")
	}

	d.Trigger(func(ctx context.Context, gen uint64) {})
	if d.IsCurrent(gen) {
		t.Error("first task should be stale after a new trigger")
	}

	close(release)
	if !<-cancelled {
		t.Error("first task's context should be cancelled")
	}
	d.Close()
}

func TestDebouncer_TriggerAfterClose(t *testing.T) {
	d := NewDebouncer(0)
	d.Close()

	var calls atomic.Int32
	gen := d.Trigger(func(ctx context.Context, gen uint64) {
		calls.Add(1)
	})

	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("task triggered after Close should not run")
	}
	if gen != d.Generation() {
		t.Errorf("Trigger after Close advanced the generation to %d", d.Generation())
	}
}

func TestDebouncer_CloseConcurrentWithTrigger(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Trigger(func(ctx context.Context, gen uint64) {})
			}
		}()
	}

	d.Close()
	wg.Wait()

	var calls atomic.Int32
	d.Trigger(func(ctx context.Context, gen uint64) {
		calls.Add(1)
	})
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("no task should run once the debouncer is closed")
	}
}
