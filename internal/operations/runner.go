package operations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dashcsv/internal/infrastructure"
)

// RunnerConfig controls how steps are executed
type RunnerConfig struct {
	// Strict aborts the run on the first failing step
	Strict bool
	// Parallel runs steps on a worker group bounded by Workers
	Parallel bool
	Workers  int
}

// Summary describes one completed run
type Summary struct {
	RunID    string
	Steps    []*StepState
	Failed   []string
	Rows     int
	Duration time.Duration
}

// Runner executes registered steps
type Runner struct {
	registry *Registry
	config   RunnerConfig
	tracer   *StepTracer
	logger   *slog.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithStepTracer sets the tracer used for step spans and metrics
func WithStepTracer(tracer *StepTracer) RunnerOption {
	return func(r *Runner) { r.tracer = tracer }
}

// WithLogger sets the runner logger
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner over registry
func NewRunner(registry *Registry, config RunnerConfig, opts ...RunnerOption) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	r := &Runner{
		registry: registry,
		config:   config,
		tracer:   NewStepTracer(nil, nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps named by ids, or every step when ids is empty.
// In strict mode the first failure is returned as soon as it happens and
// the remaining steps are skipped. Otherwise every step runs and the
// failures are returned together as an *ErrorList.
func (r *Runner) Run(ctx context.Context, ids []string) (*Summary, error) {
	steps, err := r.registry.Select(ids)
	if err != nil {
		return nil, err
	}

	ctx = infrastructure.EnsureRunID(ctx)
	summary := &Summary{
		RunID: infrastructure.GetRunID(ctx),
		Steps: make([]*StepState, len(steps)),
	}
	for i, step := range steps {
		summary.Steps[i] = NewStepState(step.ID(), step.Name())
	}

	ctx, span := r.tracer.TraceRun(ctx, summary.RunID, len(steps))
	defer span.End()

	r.logger.InfoContext(ctx, "Export run started",
		slog.Int("steps", len(steps)),
		slog.Bool("strict", r.config.Strict),
		slog.Bool("parallel", r.config.Parallel),
		slog.Int("workers", r.config.Workers))

	start := time.Now()
	if r.config.Parallel {
		err = r.runParallel(ctx, steps, summary.Steps)
	} else {
		err = r.runSequential(ctx, steps, summary.Steps)
	}
	summary.Duration = time.Since(start)

	errs := &ErrorList{}
	for _, state := range summary.Steps {
		switch state.GetStatus() {
		case StepStatusFailed:
			summary.Failed = append(summary.Failed, state.ID)
			var opErr *OperationError
			if errors.As(state.Error, &opErr) {
				errs.Add(opErr)
			}
		case StepStatusCompleted:
			summary.Rows += state.Rows
		}
	}
	r.tracer.RecordRunCompletion(ctx, span, summary.Duration, len(summary.Failed))

	if err == nil && errs.HasErrors() {
		err = errs
	}

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	r.logger.Log(ctx, level, "Export run finished",
		slog.Int("steps", len(steps)),
		slog.Int("failed", len(summary.Failed)),
		slog.Int("rows", summary.Rows),
		slog.Duration("duration", summary.Duration))

	return summary, err
}

func (r *Runner) runSequential(ctx context.Context, steps []Step, states []*StepState) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			skipRemaining(states[i:])
			return NewCancellationError(step.ID(), err)
		}

		if err := r.runStep(ctx, step, states[i]); err != nil && r.config.Strict {
			skipRemaining(states[i+1:])
			return err
		}
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, steps []Step, states []*StepState) error {
	var g *errgroup.Group
	gctx := ctx
	if r.config.Strict {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(r.config.Workers)

	for i, step := range steps {
		state := states[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				state.Skip()
				return nil
			}
			err := r.runStep(gctx, step, state)
			if r.config.Strict {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return NewCancellationError("", err)
	}
	return nil
}

// runStep executes one step inside its own span
func (r *Runner) runStep(ctx context.Context, step Step, state *StepState) error {
	ctx, span := r.tracer.TraceStep(ctx, infrastructure.GetRunID(ctx), step.ID())
	defer span.End()

	logger := r.logger.With(slog.String("step", step.ID()))
	logger.DebugContext(ctx, "Step started", slog.String("name", step.Name()))

	state.Start()
	start := time.Now()
	rows, err := step.Execute(ctx)
	duration := time.Since(start)

	if err != nil {
		opErr := NewExecutionError(step.ID(), err)
		if ctx.Err() != nil {
			opErr = NewCancellationError(step.ID(), err)
		}
		state.Fail(opErr)
		r.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, rows, err)
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Step failed",
			slog.String("error_type", string(GetErrorType(opErr))),
			slog.Duration("duration", duration))
		return opErr
	}

	state.Complete(rows)
	r.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, rows, nil)
	logger.InfoContext(ctx, "Step completed",
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
	return nil
}

func skipRemaining(states []*StepState) {
	for _, s := range states {
		s.Skip()
	}
}
