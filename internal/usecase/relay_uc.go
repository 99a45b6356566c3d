package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/infra/metrics"
)

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	TokenOK   bool
	FetchOK   bool
	Selected  int
	Delivered int
	Deferred  int // failed now, retried next cycle
	Dropped   int // failed on the last allowed attempt
	Alerted   bool
	Watermark int64
}

type RelayOptions struct {
	AuthAlertLimit      int
	MaxDeliveryAttempts int
}

// RelayUseCase runs one token → fetch → notify cycle against the tracker.
type RelayUseCase struct {
	market     adapter.MarketplaceAdapter
	fetcher    *MessageFetcher
	notifier   NotificationUseCase
	tracker    *Tracker
	translator *i18n.Translator
	opts       RelayOptions
	now        func() time.Time
	log        *zerolog.Logger
}

func NewRelayUseCase(
	market adapter.MarketplaceAdapter,
	notifier NotificationUseCase,
	tracker *Tracker,
	translator *i18n.Translator,
	opts RelayOptions,
	logger *zerolog.Logger,
) *RelayUseCase {
	if opts.AuthAlertLimit <= 0 {
		opts.AuthAlertLimit = 3
	}
	if opts.MaxDeliveryAttempts <= 0 {
		opts.MaxDeliveryAttempts = 3
	}
	l := logger.With().Str("component", "RelayUC").Logger()
	return &RelayUseCase{
		market:     market,
		fetcher:    NewMessageFetcher(market, logger),
		notifier:   notifier,
		tracker:    tracker,
		translator: translator,
		opts:       opts,
		now:        time.Now,
		log:        &l,
	}
}

func (r *RelayUseCase) Tracker() *Tracker { return r.tracker }

// RunCycle performs one poll cycle. It never returns an error: every failure
// ends the cycle and is logged, alerted or both.
func (r *RelayUseCase) RunCycle(ctx context.Context) CycleResult {
	start := r.now()
	log := logging.With(ctx, r.log)
	defer func() { metrics.ObservePollDuration(r.now().Sub(start)) }()

	var res CycleResult
	token, err := r.market.AcquireToken(ctx)
	if err != nil {
		failures := r.tracker.RecordAuthFailure()
		metrics.IncAuthFailure()
		metrics.IncPoll("auth_failed")
		log.Warn().Err(err).Int("consecutive_failures", failures).Msg("avito token unavailable")
		if failures <= r.opts.AuthAlertLimit {
			r.notifier.Alert(ctx, r.translator.T("alert_token_failed"))
			res.Alerted = true
		}
		res.Watermark = r.tracker.Watermark()
		return res
	}
	res.TokenOK = true
	r.tracker.ResetAuthFailures()

	prev := r.tracker.Watermark()
	msgs, next, err := r.fetcher.FetchNew(ctx, token, prev, r.tracker.IsNew)
	if err != nil {
		metrics.IncPoll("fetch_failed")
		if !errors.Is(err, domain.ErrFetch) {
			err = errors.Join(domain.ErrFetch, err)
		}
		log.Error().Err(err).Msg("poll cycle aborted")
		res.Watermark = prev
		return res
	}
	res.FetchOK = true
	res.Selected = len(msgs)

	// A failed delivery holds the watermark just below the failed message so
	// it passes the time filter again next cycle.
	holdBack, holding := int64(0), false
	selected := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		selected[m.MessageID] = struct{}{}
		if err := r.notifier.Notify(ctx, m); err != nil {
			attempts := r.tracker.RecordDeliveryFailure(m.MessageID)
			if attempts >= r.opts.MaxDeliveryAttempts {
				r.tracker.MarkSeen(m.MessageID)
				res.Dropped++
				metrics.IncDeliveryDropped()
				log.Error().Err(err).Str("message_id", m.MessageID).Int("attempts", attempts).Msg("message dropped")
				r.notifier.Alert(ctx, r.translator.T("alert_delivery_dropped", m.MessageID, m.ConversationID))
				continue
			}
			res.Deferred++
			if cand := m.SentAt - 1; !holding || cand < holdBack {
				holdBack, holding = cand, true
			}
			continue
		}
		r.tracker.MarkSeen(m.MessageID)
		res.Delivered++
	}

	r.tracker.RetainPending(selected)

	target := next
	if holding && holdBack < target {
		target = holdBack
	}
	res.Watermark = r.tracker.Advance(target)
	metrics.IncPoll("ok")
	log.Info().
		Int("selected", res.Selected).
		Int("delivered", res.Delivered).
		Int("deferred", res.Deferred).
		Int("dropped", res.Dropped).
		Int64("watermark", res.Watermark).
		Msg("poll cycle done")
	return res
}

// Critical makes a last best-effort attempt to tell the operator the relay is going down.
func (r *RelayUseCase) Critical(ctx context.Context, cause error) {
	r.notifier.Alert(ctx, r.translator.T("alert_critical", cause.Error()))
}
