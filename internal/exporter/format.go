package exporter

import (
	"strconv"
	"strings"

	"dashcsv/internal/files"
)

// listSeparator joins list-valued cells
const listSeparator = ";"

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatList joins names in their stored order
func formatList(items []string) string {
	return strings.Join(items, listSeparator)
}

// formatOptional renders an absent value as the empty string
func formatOptional(v files.Value, ok bool) string {
	if !ok {
		return ""
	}
	return v.Text()
}

// formatOrZero renders absent or falsy values as "0"
func formatOrZero(v files.Value, ok bool) string {
	if !ok || !v.Truthy() {
		return "0"
	}
	return v.Text()
}
