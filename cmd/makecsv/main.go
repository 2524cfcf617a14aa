// Command makecsv writes the dashboard CSV reports from pre-computed
// publisher statistics and registry metadata.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"dashcsv/internal/app"
	"dashcsv/internal/config"
	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/infrastructure"
	"dashcsv/internal/operations"
	"dashcsv/pkg/contracts"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// reportList collects repeated -report flags. Comma separated values are
// split as well.
type reportList []string

func (r *reportList) String() string {
	return strings.Join(*r, ",")
}

func (r *reportList) Set(value string) error {
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*r = append(*r, id)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("makecsv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		reports    reportList
		configFile = fs.String("config", "", "path to a YAML config file")
		baseDir    = fs.String("base-dir", "", "directory containing stats-calculated/ and data/")
		outDir     = fs.String("out", "", "output directory for the CSV files")
		lenient    = fs.Bool("lenient", false, "keep going after a failing report")
		parallel   = fs.Bool("parallel", false, "write reports concurrently")
		workbook   = fs.Bool("workbook", false, "also write every report into one XLSX workbook")
		version    = fs.Bool("version", false, "print version and exit")
	)
	fs.Var(&reports, "report", "report id to write, repeatable (default all)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	if *version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	// Flags override the file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-dir":
			cfg.Paths.BaseDir = *baseDir
		case "out":
			cfg.Paths.OutputDir = *outDir
		case "lenient":
			cfg.Export.Strict = !*lenient
		case "parallel":
			cfg.Export.Parallel = *parallel
		case "workbook":
			cfg.Export.Workbook = *workbook
		}
	})

	// A relative log file lives in the configured logs directory
	if cfg.Logging.Output != "console" && !filepath.IsAbs(cfg.Logging.FilePath) {
		if paths, err := config.NewPaths(cfg.Paths); err == nil {
			cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	application, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		infrastructure.WithError(logger, err).Error("Failed to initialize application")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	summary, err := application.Run(ctx, reports)
	if summary != nil {
		printSummary(stdout, summary)
	}
	if err != nil {
		infrastructure.WithError(logger, err).Error("Export failed",
			slog.String("error_type", string(apperrors.GetType(err))))
		printFailures(stderr, summary, err)
		if apperrors.IsMissingKey(err) && cfg.Export.Strict {
			fmt.Fprintln(stderr, "hint: rerun with -lenient to write the remaining reports")
		}
		return exitError
	}
	return exitOK
}

// printFailures writes one line per failed report, or the error itself when
// the run failed before or outside any report
func printFailures(w io.Writer, summary *operations.Summary, err error) {
	var list *operations.ErrorList
	if summary == nil || len(summary.Failed) == 0 || !errors.As(err, &list) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	for _, id := range summary.Failed {
		for _, stepErr := range list.GetByStep(id) {
			fmt.Fprintf(w, "error: %s: %v\n", id, stepErr.Cause)
		}
	}
}

func printSummary(w io.Writer, summary *operations.Summary) {
	for _, s := range summary.Steps {
		fmt.Fprintf(w, "%-34s %-9s %6d rows\n", s.ID, s.GetStatus(), s.Rows)
	}
	fmt.Fprintf(w, "%d reports, %d rows, %d failed in %s\n",
		len(summary.Steps), summary.Rows, len(summary.Failed), summary.Duration.Round(time.Millisecond))
}
