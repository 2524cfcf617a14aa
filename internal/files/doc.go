// Package files reads the pre-computed statistics trees.
//
// Statistics are stored as JSON on disk. Decode keeps the key order of every
// object and the literal text of every number, so a report can reproduce
// the source ordering and formatting exactly.
//
// Dir exposes a directory as a mapping: "<key>.json" files and "<key>/"
// subdirectories are keys, loaded on first access and cached.
//
// Example usage:
//
//	agg := files.OpenDir("stats-calculated/current/aggregated-publisher")
//	pub, ok, err := agg.Sub("example-org")
//	activities, ok, err := pub.Get("activities")
package files
