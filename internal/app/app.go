package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dashcsv/internal/config"
	"dashcsv/internal/exporter"
	"dashcsv/internal/infrastructure"
	"dashcsv/internal/operations"
	"dashcsv/internal/registry"
	"dashcsv/internal/stats"
	"dashcsv/pkg/contracts"
)

// Application holds the stores, reports and runner of one export
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Stats         *stats.Store
	Registry      *registry.Store
	Reports       []exporter.Report
	Runner        *operations.Runner
	Workbook      *exporter.WorkbookExporter

	now func() time.Time
}

// Option configures an Application
type Option func(*Application)

// WithClock replaces time.Now for the date-dependent reports
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// WithLogger replaces the global logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// New builds an application from cfg. Inputs are opened but JSON files are
// only read when a report needs them.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{
		Config: cfg,
		Logger: infrastructure.GetLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	paths.LogPathResolution(a.Logger)
	if err := paths.ValidateInputs(); err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	a.Paths = paths

	a.Registry, err = registry.Open(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	a.Stats = stats.Open(paths)
	a.Stats.LogSummary(infrastructure.WithComponent(a.Logger, "stats"))
	a.Logger.Info("Registry opened", slog.Int("records", a.Registry.Len()))

	a.OTelProviders, err = infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateExportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create export metrics: %w", err)
	}

	writer := exporter.NewCSVWriter(paths, exporter.Options{
		BOMPrefix: cfg.Export.BOMPrefix,
		UseCRLF:   cfg.Export.UseCRLF,
	})
	a.Reports = exporter.Reports(exporter.NewSources(a.Stats, a.Registry, a.now))
	a.Logger.Debug("Reports registered", slog.Any("reports", exporter.ReportIDs(a.Reports)))
	a.Workbook = exporter.NewWorkbookExporter(paths)

	steps := operations.NewRegistry()
	if err := operations.RegisterReports(steps, a.Reports, writer); err != nil {
		return nil, err
	}
	a.Runner = operations.NewRunner(steps,
		operations.RunnerConfig{
			Strict:   cfg.Export.Strict,
			Parallel: cfg.Export.Parallel,
			Workers:  cfg.Export.Workers,
		},
		operations.WithLogger(infrastructure.WithComponent(a.Logger, "runner")),
		operations.WithStepTracer(operations.NewStepTracer(a.OTelProviders.Tracer, metrics)),
	)

	return a, nil
}

// Run writes the reports named by ids, or the configured selection when
// ids is empty. The workbook is only built when every report succeeded.
func (a *Application) Run(ctx context.Context, ids []string) (*operations.Summary, error) {
	if len(ids) == 0 {
		ids = a.Config.Export.Reports
	}

	summary, err := a.Runner.Run(ctx, ids)

	if err == nil && a.Config.Export.Workbook {
		if _, werr := a.Workbook.Export(ctx, a.selected(summary)); werr != nil {
			err = fmt.Errorf("failed to export workbook: %w", werr)
		}
	}

	if path := a.Config.Telemetry.MetricsFile; path != "" {
		if merr := a.OTelProviders.WriteMetrics(path); merr != nil {
			infrastructure.WithError(a.Logger, merr).ErrorContext(ctx, "Failed to write metrics",
				slog.String("path", path))
		}
	}

	return summary, err
}

// selected returns the reports of the run in run order
func (a *Application) selected(summary *operations.Summary) []exporter.Report {
	byID := make(map[string]exporter.Report, len(a.Reports))
	for _, r := range a.Reports {
		byID[r.ID()] = r
	}
	out := make([]exporter.Report, 0, len(summary.Steps))
	for _, s := range summary.Steps {
		out = append(out, byID[s.ID])
	}
	return out
}

// Shutdown flushes telemetry
func (a *Application) Shutdown(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	return a.OTelProviders.Shutdown(ctx)
}
