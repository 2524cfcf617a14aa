// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage builds stats-calculated and registry
// fixture trees, reads written reports back and captures slog records for
// assertions.
package shared
