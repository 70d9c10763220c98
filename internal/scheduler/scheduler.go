// Package scheduler refreshes the snapshot on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/trogers1052/opportunity-radar/internal/logger"
	"github.com/trogers1052/opportunity-radar/internal/radar"
)

// Refresher reloads the snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// parser accepts standard five-field specs, an optional leading seconds field and descriptors like @every 5m
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Runner wraps a cron instance
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New creates a stopped runner. Jobs receive baseCtx.
func New(log *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger.OrNop(log),
		baseCtx: baseCtx,
	}
}

// Add registers job under spec
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() { job(r.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

// AddRefresh schedules refresher.Refresh under spec
func (r *Runner) AddRefresh(spec string, refresher Refresher) (cron.EntryID, error) {
	return r.Add(spec, func(ctx context.Context) {
		r.refresh(ctx, refresher)
	})
}

func (r *Runner) refresh(ctx context.Context, refresher Refresher) {
	err := refresher.Refresh(ctx)
	switch {
	case errors.Is(err, radar.ErrBusy):
		r.logger.Info("scheduled refresh skipped, load in progress")
	case err != nil:
		r.logger.Warn("scheduled refresh failed", zap.Error(err))
	default:
		r.logger.Debug("scheduled refresh complete")
	}
}

// Entries returns the scheduled entries
func (r *Runner) Entries() []cron.Entry {
	return r.cron.Entries()
}

// Start runs the scheduler in its own goroutine
func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("entries", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
