// Package reaper requeues orders whose printer stopped sending heartbeats.
// It only runs when an assignment lease is configured.
package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"printfarm-backend/config"
	"printfarm-backend/internal/store"
)

// Requeuer is the dispatch operation the reaper drives.
type Requeuer interface {
	RequeueStale(ctx context.Context, lease time.Duration) ([]store.Requeued, error)
}

// Reaper periodically sweeps for expired assignments.
type Reaper struct {
	svc      Requeuer
	lease    time.Duration
	interval time.Duration
	log      *zap.SugaredLogger
}

// New creates a reaper from the assignment config.
func New(cfg config.AssignmentConfig, svc Requeuer, log *zap.SugaredLogger) *Reaper {
	return &Reaper{
		svc:      svc,
		lease:    cfg.Lease,
		interval: cfg.ReapInterval,
		log:      log,
	}
}

// Enabled reports whether a lease is configured.
func (r *Reaper) Enabled() bool {
	return r.lease > 0 && r.interval > 0
}

// Run sweeps once immediately and then every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	if !r.Enabled() {
		r.log.Info("assignment lease disabled, reaper not started")
		return
	}
	r.log.Infow("starting reaper", "lease", r.lease, "interval", r.interval)

	r.SweepOnce(ctx)

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reaper shutting down")
			return
		case <-timer.C:
			r.SweepOnce(ctx)
			timer.Reset(r.interval)
		}
	}
}

// SweepOnce requeues every expired assignment and returns how many there were.
func (r *Reaper) SweepOnce(ctx context.Context) int {
	requeued, err := r.svc.RequeueStale(ctx, r.lease)
	if err != nil {
		r.log.Errorw("reaper sweep failed", "requeued", len(requeued), "error", err)
	}
	return len(requeued)
}
