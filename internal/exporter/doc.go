// Package exporter writes the dashboard CSV reports.
//
// CSVWriter is the single emitter: an ordered header followed by rows
// produced lazily by a callback, written as RFC 4180 UTF-8 with an optional
// byte order mark. Rows are either positional records (WriteRows) or maps
// keyed by header (WriteMaps); a map row that does not match the header is
// an error.
//
// Each Report builds one file from a Sources bundle. Reports returns all of
// them in output order:
//
//	publishers.csv                  one summary row per activity-index publisher
//	elements.csv, elements_total.csv element x publisher counts
//	registry.csv                    raw registry records
//	timeliness_frequency.csv        update frequency assessment
//	timeliness_timelag.csv          time lag assessment
//	transactions_type_year.csv      flattened transaction sums
//	activities_per_publisher.csv    activity count per publisher
//	forwardlooking.csv              budgets for the coming three years
//	comprehensiveness_<tab>.csv     one file per comprehensiveness tab
//
// WorkbookExporter optionally copies the written files into a single XLSX
// workbook with one sheet per report.
//
// Example usage:
//
//	src := exporter.NewSources(statsStore, registryStore, time.Now)
//	writer := exporter.NewCSVWriter(paths, exporter.Options{})
//	for _, r := range exporter.Reports(src) {
//		if _, err := r.Write(ctx, writer); err != nil {
//			return err
//		}
//	}
package exporter
