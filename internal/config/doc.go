// Package config provides centralized configuration management for dashcsv.
// It handles loading configuration from multiple sources, validation, and
// resolves every input and output path used by the export run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (dashcsv.yaml or configs/dashcsv.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DASHCSV_<SECTION>_<FIELD>:
//
//	DASHCSV_LOGGING_LEVEL=debug
//	DASHCSV_PATHS_STATS_DIR=/srv/dashboard/stats-calculated
//	DASHCSV_EXPORT_STRICT=false
//	DASHCSV_EXPORT_REPORTS=publishers,registry
//	DASHCSV_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/dashcsv.prom
//
// # Path Management
//
// Paths resolves the stats-calculated and data trees the reports read and
// the output directory they are written to:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	activities := filepath.Join(paths.InvertedPublisherDir(), "activities.json")
//	report := paths.GetReportPath("publishers.csv")
package config
