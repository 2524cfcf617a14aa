package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "dashcsv/internal/errors"
)

// Paths contains all the application paths.
// This is the single source of truth for every input and output location.
type Paths struct {
	BaseDir   string
	StatsDir  string
	DataDir   string
	OutputDir string
	LogsDir   string
}

// NewPaths resolves the configured directories. Relative directories are
// joined to BaseDir; an empty BaseDir means the working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:   base,
		StatsDir:  resolve(cfg.StatsDir),
		DataDir:   resolve(cfg.DataDir),
		OutputDir: resolve(cfg.OutputDir),
		LogsDir:   resolve(cfg.LogsDir),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist.
// Input directories are never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// CurrentStatsDir is the snapshot the reports are built from
func (p *Paths) CurrentStatsDir() string {
	return filepath.Join(p.StatsDir, CurrentStatsSubdir)
}

// InvertedPublisherDir holds activities.json, elements.json and elements_total.json
func (p *Paths) InvertedPublisherDir() string {
	return filepath.Join(p.CurrentStatsDir(), InvertedPublisherSubdir)
}

// AggregatedPublisherDir holds one directory of statistics per publisher
func (p *Paths) AggregatedPublisherDir() string {
	return filepath.Join(p.CurrentStatsDir(), AggregatedPublisherDir)
}

// GitAggregateDatedDir holds the dated history used for frequency assessment
func (p *Paths) GitAggregateDatedDir() string {
	return filepath.Join(p.StatsDir, GitAggregateDatedSubdir)
}

// CKANPublishersDir holds one registry record per publisher
func (p *Paths) CKANPublishersDir() string {
	return filepath.Join(p.DataDir, CKANPublishersSubdir)
}

// TicketsFile maps publisher ids to open data tickets
func (p *Paths) TicketsFile() string {
	return filepath.Join(p.DataDir, TicketsFileName)
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// WorkbookPath returns the location of the optional XLSX workbook
func (p *Paths) WorkbookPath() string {
	return p.GetReportPath(WorkbookFileName)
}

// LogPathResolution logs the resolved locations
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("stats", p.StatsDir),
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("inverted_publisher", p.InvertedPublisherDir()),
			slog.String("aggregated_publisher", p.AggregatedPublisherDir()),
			slog.String("gitaggregate_dated", p.GitAggregateDatedDir()),
			slog.String("ckan_publishers", p.CKANPublishersDir()),
			slog.String("tickets", p.TicketsFile()),
		))
}

// ValidateInputs checks that the directories every report needs exist
func (p *Paths) ValidateInputs() error {
	required := []string{p.InvertedPublisherDir(), p.CKANPublishersDir()}
	for _, dir := range required {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError("required input directory " + dir)
		}
		if err != nil {
			return apperrors.NewStorageError("failed to stat "+dir, err)
		}
		if !info.IsDir() {
			return apperrors.NewAppValidationError(fmt.Sprintf("required input %s is not a directory", dir))
		}
	}
	return nil
}
