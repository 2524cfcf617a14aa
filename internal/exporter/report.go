package exporter

import (
	"context"
	"strings"
)

// Common leading columns
const (
	HeaderPublisherName = "Publisher Name"
	HeaderPublisherID   = "Publisher Registry Id"
)

const csvExt = ".csv"

// Report writes one CSV file
type Report interface {
	// ID is the file name without extension
	ID() string
	FileName() string
	// Write produces the file and returns the number of data rows
	Write(ctx context.Context, w *CSVWriter) (int, error)
}

// baseReport carries the file name of a report
type baseReport struct {
	file string
}

func (b baseReport) ID() string {
	return strings.TrimSuffix(b.file, csvExt)
}

func (b baseReport) FileName() string {
	return b.file
}

// Reports returns every report in output order
func Reports(src Sources) []Report {
	reports := []Report{
		&publishersReport{baseReport{"publishers.csv"}, src},
		newElementsReport(src),
		newElementsTotalReport(src),
		&registryReport{baseReport{"registry.csv"}, src},
		newFrequencyReport(src),
		newTimelagReport(src),
		&transactionsReport{baseReport{"transactions_type_year.csv"}, src},
		&activitiesReport{baseReport{"activities_per_publisher.csv"}, src},
		&forwardLookingReport{baseReport{"forwardlooking.csv"}, src},
	}
	for _, tab := range src.Comprehensiveness.Tabs() {
		reports = append(reports, newComprehensivenessReport(src, tab))
	}
	return reports
}

// ReportIDs returns the ids of reports in order
func ReportIDs(reports []Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID()
	}
	return ids
}
