package domain

// TimelinessRecord is one row of a timeliness assessment
type TimelinessRecord struct {
	Title       string
	PublisherID string
	// PerMonth maps "YYYY-MM" to the number of updates in that month
	PerMonth   map[string]int64
	Assessment string
}

// Count returns the number of updates in month, 0 when absent
func (r TimelinessRecord) Count(month string) int64 {
	return r.PerMonth[month]
}

// ForwardLookingRow holds one publisher's forward-looking cells. YearColumns
// has one entry per column header, each keyed by year.
type ForwardLookingRow struct {
	PublisherID string
	Title       string
	YearColumns []map[int]string
}

// ComprehensivenessRow holds one publisher's comprehensiveness scores keyed
// by column slug; validated scores use the "<slug>_valid" key
type ComprehensivenessRow struct {
	PublisherID string
	Title       string
	Values      map[string]string
}

// Lookup returns the value for key and whether the row carries it
func (r ComprehensivenessRow) Lookup(key string) (string, bool) {
	v, ok := r.Values[key]
	return v, ok
}
