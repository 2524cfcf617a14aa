package config

// Application constants
const (
	// Application Info
	AppName    = "dashcsv"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. DASHCSV_LOGGING_LEVEL
	EnvPrefix = "DASHCSV"

	// Default directories (relative to the base directory)
	DefaultStatsDir  = "stats-calculated"
	DefaultDataDir   = "data"
	DefaultOutputDir = "out"
	DefaultLogsDir   = "logs"

	// Layout of the stats-calculated tree
	CurrentStatsSubdir      = "current"
	InvertedPublisherSubdir = "inverted-publisher"
	AggregatedPublisherDir  = "aggregated-publisher"
	GitAggregateDatedSubdir = "gitaggregate-publisher-dated"

	// Layout of the data tree
	CKANPublishersSubdir = "ckan_publishers"
	TicketsFileName      = "tickets.json"

	// WorkbookFileName is written next to the CSV reports when enabled
	WorkbookFileName = "dashboard.xlsx"

	// Export defaults
	DefaultWorkers = 4
	MaxWorkers     = 64
)
