package comprehensiveness

// Column is one scored field of a tab
type Column struct {
	Slug   string
	Header string
	// Weight in the tab average; averages themselves carry 0
	Weight int
}

// Tab names in report order
const (
	TabSummary    = "summary"
	TabCore       = "core"
	TabFinancials = "financials"
	TabValueAdded = "valueadded"
)

var tabs = []string{TabSummary, TabCore, TabFinancials, TabValueAdded}

// scoredTabs are the tabs whose columns are read from the statistics
var scoredTabs = []string{TabCore, TabFinancials, TabValueAdded}

var columns = map[string][]Column{
	TabSummary: {
		{"core_average", "Core Average", 2},
		{"financials_average", "Financials Average", 1},
		{"valueadded_average", "Value Added Average", 1},
		{"summary_average", "Weighted Average", 0},
	},
	TabCore: {
		{"version", "Version", 2},
		{"reporting-org", "Reporting-Org", 2},
		{"iati-identifier", "Iati-identifier", 2},
		{"participating-org", "Participating Organisation", 2},
		{"title", "Title", 2},
		{"description", "Description", 2},
		{"activity-status", "Status", 2},
		{"activity-date", "Activity Date", 2},
		{"sector", "Sector", 2},
		{"country_or_region", "Country or Region", 2},
		{"core_average", "Average", 0},
	},
	TabFinancials: {
		{"transaction_commitment", "Transaction - Commitment", 1},
		{"transaction_spend", "Transaction - Disbursement or Expenditure", 1},
		{"transaction_traceability", "Transaction - Traceability", 1},
		{"budget", "Budget", 1},
		{"financials_average", "Average", 0},
	},
	TabValueAdded: {
		{"contact-info", "Contacts", 1},
		{"location", "Location Details", 1},
		{"location_point_pos", "Geographic Coordinates", 1},
		{"sector_dac", "DAC Sectors", 1},
		{"capital-spend", "Capital Spend", 1},
		{"document-link", "Activity Documents", 1},
		{"aid_type", "Aid Type", 1},
		{"recipient_language", "Recipient Language", 1},
		{"result_indicator", "Result/ Indicator", 1},
		{"valueadded_average", "Average", 0},
	},
}

// Tabs returns the tab names in report order
func Tabs() []string {
	out := make([]string, len(tabs))
	copy(out, tabs)
	return out
}

// ColumnHeaders returns the display headers of tab
func ColumnHeaders(tab string) []string {
	var out []string
	for _, c := range columns[tab] {
		out = append(out, c.Header)
	}
	return out
}

// ColumnSlugs returns the value keys of tab
func ColumnSlugs(tab string) []string {
	var out []string
	for _, c := range columns[tab] {
		out = append(out, c.Slug)
	}
	return out
}
