package revocation

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically deletes revocation records whose token has expired
// naturally. It never sits in a request's critical path: a failed sweep is
// logged and retried on the next tick.
type Reaper struct {
	Store    Store
	Interval time.Duration
	Log      *slog.Logger
}

func NewReaper(store Store, interval time.Duration, log *slog.Logger) *Reaper {
	return &Reaper{Store: store, Interval: interval, Log: log}
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := r.Store.Reap(sweepCtx, time.Now())
	if err != nil {
		r.Log.Error("reap_failed", "error", err)
		return
	}
	r.Log.Info("reap_completed", "deleted", deleted)
}
