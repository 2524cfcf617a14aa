package exporter

import (
	"context"
	"strconv"

	"dashcsv/internal/timeliness"
	"dashcsv/pkg/contracts/domain"
)

// timelinessReport writes a sorted timeliness assessment with one column
// per previous month
type timelinessReport struct {
	baseReport
	label   string
	records func() ([]domain.TimelinessRecord, error)
	src     Sources
}

func newFrequencyReport(src Sources) *timelinessReport {
	return &timelinessReport{
		baseReport: baseReport{"timeliness_frequency.csv"},
		label:      timeliness.FrequencyLabel,
		records:    src.Timeliness.PublisherFrequencySorted,
		src:        src,
	}
}

func newTimelagReport(src Sources) *timelinessReport {
	return &timelinessReport{
		baseReport: baseReport{"timeliness_timelag.csv"},
		label:      timeliness.TimelagLabel,
		records:    src.Timeliness.PublisherTimelagSorted,
		src:        src,
	}
}

func (r *timelinessReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	records, err := r.records()
	if err != nil {
		return 0, err
	}
	months := r.src.Timeliness.PreviousMonthsReversed()

	headers := make([]string, 0, len(months)+3)
	headers = append(headers, HeaderPublisherName, HeaderPublisherID)
	headers = append(headers, months...)
	headers = append(headers, r.label)

	return w.WriteRows(ctx, r.file, headers, func(emit func([]string) error) error {
		for _, rec := range records {
			record := make([]string, 0, len(headers))
			record = append(record, rec.Title, rec.PublisherID)
			for _, m := range months {
				record = append(record, strconv.FormatInt(rec.Count(m), 10))
			}
			record = append(record, rec.Assessment)
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}
