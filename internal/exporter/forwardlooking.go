package exporter

import (
	"context"
	"fmt"

	apperrors "dashcsv/internal/errors"
)

// forwardLookingReport writes a header x year block per publisher
type forwardLookingReport struct {
	baseReport
	src Sources
}

// cell addresses one header/year pair of the forward-looking matrix
type cell struct {
	column int
	year   int
}

// cells returns header-major, year-minor positions so headers and values
// share a single traversal
func cells(columns int, years []int) []cell {
	out := make([]cell, 0, columns*len(years))
	for c := 0; c < columns; c++ {
		for _, y := range years {
			out = append(out, cell{column: c, year: y})
		}
	}
	return out
}

func (r *forwardLookingReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	table, err := r.src.ForwardLooking.Table()
	if err != nil {
		return 0, err
	}
	columnHeaders := r.src.ForwardLooking.ColumnHeaders()
	layout := cells(len(columnHeaders), r.src.ForwardLooking.Years())

	headers := make([]string, 0, len(layout)+2)
	headers = append(headers, HeaderPublisherName, HeaderPublisherID)
	for _, c := range layout {
		headers = append(headers, fmt.Sprintf("%s (%d)", columnHeaders[c.column], c.year))
	}

	return w.WriteRows(ctx, r.file, headers, func(emit func([]string) error) error {
		for _, row := range table {
			record := make([]string, 0, len(headers))
			record = append(record, row.Title, row.PublisherID)
			for _, c := range layout {
				var value string
				ok := c.column < len(row.YearColumns)
				if ok {
					value, ok = row.YearColumns[c.column][c.year]
				}
				if !ok {
					return apperrors.NewMissingKeyError("forward-looking "+row.PublisherID,
						fmt.Sprintf("%s (%d)", columnHeaders[c.column], c.year))
				}
				record = append(record, value)
			}
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}
