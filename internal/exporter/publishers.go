package exporter

import (
	"context"
	"strconv"
)

var publisherHeaders = []string{
	HeaderPublisherName,
	HeaderPublisherID,
	"Activities",
	"Organisations",
	"Files",
	"Activity Files",
	"Organisation Files",
	"Total File Size",
	"Reporting Org on Registry",
	"Reporting Orgs in Data (count)",
	"Reporting Orgs in Data",
	"Data Tickets",
	"Hierarchies (count)",
	"Hierarchies",
}

// publishersReport writes one summary row per publisher of the activity
// index
type publishersReport struct {
	baseReport
	src Sources
}

func (r *publishersReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	index, err := r.src.Stats.ActivityIndex()
	if err != nil {
		return 0, err
	}

	return w.WriteMaps(ctx, r.file, publisherHeaders, func(emit func(map[string]string) error) error {
		for _, entry := range index {
			title, err := r.src.Registry.Title(entry.PublisherID)
			if err != nil {
				return err
			}
			ps, err := r.src.Stats.PublisherStats(entry.PublisherID)
			if err != nil {
				return err
			}
			iatiID, err := r.src.Registry.IATIID(entry.PublisherID)
			if err != nil {
				return err
			}

			row := map[string]string{
				HeaderPublisherName:              title,
				HeaderPublisherID:                entry.PublisherID,
				"Activities":                     entry.Activities.Text(),
				"Organisations":                  formatInt(ps.Organisations),
				"Files":                          formatInt(ps.Files()),
				"Activity Files":                 formatInt(ps.ActivityFiles),
				"Organisation Files":             formatInt(ps.OrganisationFiles),
				"Total File Size":                formatInt(ps.FileSize),
				"Reporting Org on Registry":      iatiID.Text(),
				"Reporting Orgs in Data (count)": strconv.Itoa(len(ps.ReportingOrgs)),
				"Reporting Orgs in Data":         formatList(ps.ReportingOrgs),
				"Data Tickets":                   strconv.Itoa(r.src.Registry.TicketCount(entry.PublisherID)),
				"Hierarchies (count)":            strconv.Itoa(len(ps.Hierarchies)),
				"Hierarchies":                    formatList(ps.Hierarchies),
			}
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	})
}
