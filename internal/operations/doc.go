// Package operations runs the report jobs of one export.
//
// Core Components:
//
// Step: a single unit of work, one per report. A step writes its file and
// reports the number of rows.
//
// Registry: holds steps in registration order and resolves the subset a
// caller asked for. Asking for an unknown id is a configuration error.
//
// Runner: executes the selected steps sequentially or on a bounded worker
// group. In strict mode the first failure aborts the run; otherwise failing
// steps are recorded and the rest still run. Every step gets its own span
// and is counted in the export metrics.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	for _, r := range exporter.Reports(src) {
//		registry.Register(operations.NewReportStep(r, writer))
//	}
//	runner := operations.NewRunner(registry, operations.RunnerConfig{Strict: true})
//	summary, err := runner.Run(ctx, nil)
package operations
