package exporter

import (
	"context"
)

// registryFields are the registry record fields in column order. The
// thresholds/agencies token is a single historical column name.
var registryFields = []string{
	"name",
	"title",
	"publisher_frequency",
	"publisher_frequency_select",
	"publisher_implementation_schedule",
	"publisher_ui",
	"publisher_field_exclusions",
	"publisher_contact",
	"image_url",
	"display_name",
	"publisher_iati_id",
	"publisher_units",
	"publisher_record_exclusions",
	"publisher_data_quality",
	"publisher_country",
	"publisher_description",
	"publisher_refs",
	"publisher_thresholdspublisher_agencies",
	"publisher_constraints",
	"publisher_organization_type",
	"publisher_segmentation",
	"license_id",
	"state",
	"publisher_timeliness",
}

// registryReport dumps every registry record in store order
type registryReport struct {
	baseReport
	src Sources
}

func (r *registryReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	return w.WriteRows(ctx, r.file, registryFields, func(emit func([]string) error) error {
		for _, rec := range r.src.Registry.Records() {
			record := make([]string, len(registryFields))
			for i, field := range registryFields {
				record[i] = formatOrZero(rec.Field(field))
			}
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}
