package worker

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
)

// RateRefresher periodically refreshes every supported currency pair.
type RateRefresher struct {
	rates    portssvc.ExchangeRateWriterSvc
	interval time.Duration
	logger   *slog.Logger
}

// NewRateRefresher returns a refresher running every interval. An interval of 0
// only performs the start-up warm-up.
func NewRateRefresher(rates portssvc.ExchangeRateWriterSvc, interval time.Duration, logger *slog.Logger) *RateRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateRefresher{
		rates:    rates,
		interval: interval,
		logger:   logger.With(slog.String("component", "rate_refresher")),
	}
}

// Run warms the cache once and then refreshes on every tick until ctx is done.
func (r *RateRefresher) Run(ctx context.Context) {
	r.logger.Info("Running initial exchange rate refresh...")
	r.refresh(ctx)

	if r.interval <= 0 {
		r.logger.Info("Periodic exchange rate refresh disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Exchange rate refresher stopped")
			return
		case now := <-ticker.C:
			r.refresh(ctx)
			r.logger.Debug("Next exchange rate refresh scheduled", slog.Time("next", now.Add(r.interval)))
		}
	}
}

func (r *RateRefresher) refresh(ctx context.Context) {
	report, err := r.rates.RefreshAll(ctx)
	if err != nil {
		r.logger.Warn("Exchange rate refresh skipped", slog.String("error", err.Error()))
		return
	}

	failed := make([]string, len(report.Failed))
	for i, p := range report.Failed {
		failed[i] = p.String()
	}
	level := slog.LevelInfo
	if len(report.Failed) > 0 {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "Exchange rate refresh complete",
		slog.Int("attempted", report.Attempted),
		slog.Int("succeeded", report.Succeeded),
		slog.Any("failed", failed),
		slog.Duration("duration", report.Duration),
	)
}
