package operations

import (
	"context"

	"dashcsv/internal/exporter"
)

// ReportStep writes one report as a Step
type ReportStep struct {
	report exporter.Report
	writer *exporter.CSVWriter
}

// NewReportStep wraps report so the runner can execute it
func NewReportStep(report exporter.Report, writer *exporter.CSVWriter) *ReportStep {
	return &ReportStep{report: report, writer: writer}
}

// ID returns the report id
func (s *ReportStep) ID() string {
	return s.report.ID()
}

// Name returns the output file name
func (s *ReportStep) Name() string {
	return s.report.FileName()
}

// Execute writes the report
func (s *ReportStep) Execute(ctx context.Context) (int, error) {
	return s.report.Write(ctx, s.writer)
}

// RegisterReports registers a step for every report in order
func RegisterReports(registry *Registry, reports []exporter.Report, writer *exporter.CSVWriter) error {
	for _, r := range reports {
		if err := registry.Register(NewReportStep(r, writer)); err != nil {
			return err
		}
	}
	return nil
}
