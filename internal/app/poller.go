package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/keybot/keybot/internal/keybot"
	"github.com/keybot/keybot/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// SummaryFetcher produces the dashboard summary.
type SummaryFetcher interface {
	Summary(ctx context.Context) (keybot.Summary, error)
}

// StartPoller launches a background goroutine that refreshes the store. After
// a failure the next poll is delayed with capped exponential backoff. It
// returns immediately.
func StartPoller(ctx context.Context, store *state.Store, fetcher SummaryFetcher, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	go func() {
		for {
			_ = refresh(ctx, store, fetcher, logger)

			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, fetcher SummaryFetcher, logger *slog.Logger) error {
	summary, err := fetcher.Summary(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; not a poll failure.
			return err
		}
		store.Update(nil, err)
		logger.Warn("dashboard poll failed", "error", err)
		return err
	}
	store.Update(&summary, nil)
	return nil
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff. An interval already above the cap is left alone.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
