package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/usecase"
)

type fakeCycler struct {
	mu       sync.Mutex
	cycles   int
	panicAt  int
	critical []error
	ran      chan struct{}
}

func (f *fakeCycler) RunCycle(ctx context.Context) usecase.CycleResult {
	f.mu.Lock()
	f.cycles++
	n := f.cycles
	f.mu.Unlock()
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	if n == f.panicAt {
		panic("nil map write")
	}
	return usecase.CycleResult{TokenOK: true, FetchOK: true}
}

func (f *fakeCycler) Critical(ctx context.Context, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.critical = append(f.critical, cause)
}

func TestPollWorkerRunsFirstCycleImmediately(t *testing.T) {
	logger := zerolog.Nop()
	c := &fakeCycler{ran: make(chan struct{}, 1)}
	w := NewPollWorker(time.Hour, c, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	select {
	case <-c.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle did not run at startup")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
}

func TestPollWorkerTicks(t *testing.T) {
	logger := zerolog.Nop()
	c := &fakeCycler{}
	w := NewPollWorker(10*time.Millisecond, c, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cycles < 3 {
		t.Fatalf("cycles = %d, want at least 3", c.cycles)
	}
}

func TestPollWorkerPanicSendsCriticalAlert(t *testing.T) {
	logger := zerolog.Nop()
	c := &fakeCycler{panicAt: 2}
	w := NewPollWorker(5*time.Millisecond, c, &logger)

	err := w.Run(context.Background())

	if err == nil {
		t.Fatal("expected error after panic")
	}
	if len(c.critical) != 1 {
		t.Fatalf("critical alerts = %d, want 1", len(c.critical))
	}
	if c.cycles != 2 {
		t.Fatalf("cycles = %d, want 2", c.cycles)
	}
}

func TestNewPollWorkerDefaultsInterval(t *testing.T) {
	logger := zerolog.Nop()
	w := NewPollWorker(0, &fakeCycler{}, &logger)
	if w.interval != PollInterval {
		t.Fatalf("interval = %v", w.interval)
	}
}
