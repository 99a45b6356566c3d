package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/usecase"
)

// PollInterval is the fixed pause between poll cycles.
const PollInterval = 60 * time.Second

// criticalTimeout bounds the farewell alert sent after a crash.
const criticalTimeout = 10 * time.Second

// Cycler runs relay cycles. *usecase.RelayUseCase implements it.
type Cycler interface {
	RunCycle(ctx context.Context) usecase.CycleResult
	Critical(ctx context.Context, cause error)
}

type PollWorker struct {
	interval time.Duration
	relay    Cycler
	log      *zerolog.Logger
}

func NewPollWorker(interval time.Duration, relay Cycler, logger *zerolog.Logger) *PollWorker {
	if interval <= 0 {
		interval = PollInterval
	}
	compLog := logger.With().Str("component", "PollWorker").Logger()
	return &PollWorker{
		interval: interval,
		relay:    relay,
		log:      &compLog,
	}
}

// Run executes one cycle immediately and then one per interval until ctx is
// cancelled. A panicking cycle sends a final critical alert and ends Run with
// an error.
func (w *PollWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting poll worker")
	if err := w.runCycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping poll worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.runCycle(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *PollWorker) runCycle(ctx context.Context) (err error) {
	ctx = logging.WithCycleID(ctx, ulid.Make().String())
	log := logging.With(ctx, w.log)

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		err = fmt.Errorf("poll cycle panic: %v", rec)
		log.Error().Interface("panic", rec).Msg("poll loop crashed")
		alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), criticalTimeout)
		defer cancel()
		w.relay.Critical(alertCtx, err)
	}()

	res := w.relay.RunCycle(ctx)
	log.Debug().
		Bool("token_ok", res.TokenOK).
		Bool("fetch_ok", res.FetchOK).
		Int("delivered", res.Delivered).
		Msg("cycle finished")
	return nil
}
