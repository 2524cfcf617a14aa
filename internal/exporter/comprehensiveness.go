package exporter

import (
	"context"

	"dashcsv/internal/comprehensiveness"
	apperrors "dashcsv/internal/errors"
	"dashcsv/pkg/contracts/domain"
)

// missingScore renders a slug the publisher has no score for
const missingScore = "-"

// comprehensivenessReport writes one tab of the shared comprehensiveness
// table: the validated score of every column followed by the unvalidated
// one
type comprehensivenessReport struct {
	baseReport
	tab string
	src Sources
}

func newComprehensivenessReport(src Sources, tab string) *comprehensivenessReport {
	return &comprehensivenessReport{
		baseReport: baseReport{"comprehensiveness_" + tab + csvExt},
		tab:        tab,
		src:        src,
	}
}

func (r *comprehensivenessReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	table, err := r.src.Comprehensiveness.Table()
	if err != nil {
		return 0, err
	}
	columnHeaders := r.src.Comprehensiveness.ColumnHeaders(r.tab)
	slugs := r.src.Comprehensiveness.ColumnSlugs(r.tab)

	headers := make([]string, 0, 2+2*len(slugs))
	headers = append(headers, HeaderPublisherName, HeaderPublisherID)
	for _, h := range columnHeaders {
		headers = append(headers, h+" (valid)")
	}
	for _, h := range columnHeaders {
		headers = append(headers, h+" (all)")
	}

	return w.WriteRows(ctx, r.file, headers, func(emit func([]string) error) error {
		for _, row := range table {
			record := make([]string, 0, len(headers))
			record = append(record, row.Title, row.PublisherID)
			for _, suffix := range []string{comprehensiveness.ValidSuffix, ""} {
				for _, slug := range slugs {
					v, err := score(row, slug, suffix)
					if err != nil {
						return err
					}
					record = append(record, v)
				}
			}
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// score returns the slug+suffix value of a row. A publisher without the
// slug renders missingScore; a publisher with the slug must also carry the
// suffixed variant.
func score(row domain.ComprehensivenessRow, slug, suffix string) (string, error) {
	if _, ok := row.Lookup(slug); !ok {
		return missingScore, nil
	}
	v, ok := row.Lookup(slug + suffix)
	if !ok {
		return "", apperrors.NewMissingKeyError("comprehensiveness/"+row.PublisherID, slug+suffix)
	}
	return v, nil
}
