package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type uploadProcessor interface {
	Process(ctx context.Context) (*Report, error)
}

// Runner schedules upload runs from a periodic timer and from explicit
// triggers (folder changes, tool calls). Concurrent requests share a
// single in-flight run.
type Runner struct {
	proc     uploadProcessor
	interval time.Duration
	logger   *slog.Logger

	group    singleflight.Group
	triggers chan struct{}

	mu       sync.Mutex
	last     *Report
	lifetime context.Context // set by Run; bounds shared runs
}

// NewRunner creates a runner that runs proc every interval.
func NewRunner(proc uploadProcessor, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		proc:     proc,
		interval: interval,
		logger:   logger,
		triggers: make(chan struct{}, 1),
	}
}

// RunOnce performs an upload run, or joins the one already in flight.
// The run does not belong to any one caller: cancelling ctx only stops
// this caller waiting for it. The run itself stops when Run's context
// ends.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	runCtx := r.runContext(ctx)

	ch := r.group.DoChan("camera-upload", func() (interface{}, error) {
		report, err := r.proc.Process(runCtx)
		if report != nil {
			r.mu.Lock()
			r.last = report
			r.mu.Unlock()
		}

		return report, err
	})

	select {
	case <-ctx.Done():
		return nil, cancelled(ctx.Err())
	case res := <-ch:
		report, _ := res.Val.(*Report)
		return report, res.Err
	}
}

// runContext returns the context a shared run executes under. Outside
// Run there is no lifetime, so the run detaches from the caller.
func (r *Runner) runContext(ctx context.Context) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lifetime != nil {
		return r.lifetime
	}

	return context.WithoutCancel(ctx)
}

// Trigger requests a run without waiting for it. Triggers that arrive
// while one is already queued are merged.
func (r *Runner) Trigger() {
	select {
	case r.triggers <- struct{}{}:
	default:
	}
}

// LastReport returns the most recent completed run, or nil.
func (r *Runner) LastReport() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.last
}

// Run performs an initial upload run and then one per interval or
// trigger until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("invalid scan interval %s", r.interval)
	}

	r.mu.Lock()
	r.lifetime = ctx
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.lifetime = nil
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runAndLog(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.runAndLog(ctx, "interval")
		case <-r.triggers:
			r.runAndLog(ctx, "trigger")
		}
	}
}

func (r *Runner) runAndLog(ctx context.Context, reason string) {
	report, err := r.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		r.logger.Error("camera upload run failed",
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)

		return
	}

	r.logger.Debug("camera upload run finished",
		slog.String("reason", reason),
		slog.String("run_id", report.RunID),
		slog.Int("queued", report.Queued()),
	)
}
