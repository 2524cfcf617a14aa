// Package app wires one export run together.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Resolve paths and check that the input trees exist
//	2. Open the statistics and registry stores
//	3. Initialize tracing and the export metrics
//	4. Build the derived metric modules and the thirteen reports
//	5. Register every report as a step of the runner
//
// Run then executes the selected reports, optionally copies them into a
// workbook, and writes the metrics textfile when one is configured.
//
// Stores are immutable after New; the same Application can run several
// times and produce identical files.
package app
