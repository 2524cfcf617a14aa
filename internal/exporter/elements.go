package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/internal/stats"
)

// elementsReport writes one row per element with a column per publisher of
// the activity index. Counts for publishers outside the index are dropped and
// logged at debug level.
type elementsReport struct {
	baseReport
	variant stats.ElementsVariant
	src     Sources
}

func newElementsReport(src Sources) *elementsReport {
	return &elementsReport{baseReport{"elements.csv"}, stats.ElementsValid, src}
}

func newElementsTotalReport(src Sources) *elementsReport {
	return &elementsReport{baseReport{"elements_total.csv"}, stats.ElementsTotal, src}
}

func (r *elementsReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	ids, err := r.src.Stats.PublisherIDs()
	if err != nil {
		return 0, err
	}
	elements, err := r.src.Stats.Elements(r.variant)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	dropped := make(map[string]bool)

	headers := append([]string{"Element"}, ids...)
	n, err := w.WriteRows(ctx, r.file, headers, func(emit func([]string) error) error {
		return elements.Each(func(element string, v files.Value) error {
			counts, ok := v.AsObject()
			if !ok {
				return apperrors.NewParsingError(
					fmt.Sprintf("%s/%s: expected object, got %s", r.variant, element, v.Kind()), nil)
			}
			for _, id := range counts.Keys() {
				if !known[id] {
					dropped[id] = true
				}
			}
			record := make([]string, 0, len(headers))
			record = append(record, element)
			for _, id := range ids {
				n, ok := counts.Get(id)
				record = append(record, formatOptional(n, ok))
			}
			return emit(record)
		})
	})
	if err == nil && len(dropped) > 0 {
		slog.DebugContext(ctx, "Element counts ignored for publishers outside the activity index",
			slog.String("report", r.ID()),
			slog.Any("publishers", sortedKeys(dropped)))
	}
	return n, err
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
