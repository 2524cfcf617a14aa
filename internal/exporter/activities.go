package exporter

import (
	"context"
)

var activitiesHeaders = []string{HeaderPublisherName, HeaderPublisherID, "Number of activities"}

// activitiesReport writes the aggregated activity count per publisher in
// title order
type activitiesReport struct {
	baseReport
	src Sources
}

func (r *activitiesReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	publishers, err := r.src.Titles.PublishersByTitle()
	if err != nil {
		return 0, err
	}

	return w.WriteRows(ctx, r.file, activitiesHeaders, func(emit func([]string) error) error {
		for _, pub := range publishers {
			n, err := r.src.Stats.AggregatedActivities(pub.ID)
			if err != nil {
				return err
			}
			if err := emit([]string{pub.Title, pub.ID, n.Text()}); err != nil {
				return err
			}
		}
		return nil
	})
}
