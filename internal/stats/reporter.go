// Package stats publishes slow-moving gauges on a cron schedule.
package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/oops"

	"github.com/ErlanBelekov/secure-login/internal/metrics"
)

const reportTimeout = 5 * time.Second

type credentialCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Reporter refreshes the registered-credentials gauge.
type Reporter struct {
	counter  credentialCounter
	schedule cron.Schedule
	expr     string
	logger   *slog.Logger
}

// NewReporter accepts standard five-field cron specs and descriptors such
// as "@every 1m".
func NewReporter(counter credentialCounter, expr string, logger *slog.Logger) (*Reporter, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, oops.Code("STATS_SCHEDULE_INVALID").With("schedule", expr).Wrap(err)
	}
	return &Reporter{
		counter:  counter,
		schedule: schedule,
		expr:     expr,
		logger:   logger.With("component", "stats"),
	}, nil
}

// Start reports once, then on every tick until ctx is done.
func (r *Reporter) Start(ctx context.Context) {
	c := cron.New()
	c.Schedule(r.schedule, cron.FuncJob(func() {
		if err := r.Report(ctx); err != nil {
			r.logger.Warn("stats report failed", "error", err)
		}
	}))

	if err := r.Report(ctx); err != nil {
		r.logger.Warn("stats report failed", "error", err)
	}

	r.logger.Info("stats reporter started", "schedule", r.expr)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("stats reporter shut down")
}

func (r *Reporter) Report(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	n, err := r.counter.Count(ctx)
	if err != nil {
		return err
	}
	metrics.CredentialsRegistered.Set(float64(n))
	return nil
}
