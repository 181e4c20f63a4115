package validation

import (
	"fmt"
	"strings"
	"time"
)

// Canonical storage form for all dates.
const DateLayout = "2006-01-02"

// Human display form used by the presentation layers.
const DisplayLayout = "02/01/2006"

// ParseDate parses a date in either the canonical YYYY-MM-DD form or
// the DD/MM/YYYY display form.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if strings.Contains(trimmed, "/") {
		return time.ParseInLocation(DisplayLayout, trimmed, time.Local)
	}
	if len(trimmed) > len(DateLayout) {
		trimmed = trimmed[:len(DateLayout)]
	}
	return time.ParseInLocation(DateLayout, trimmed, time.Local)
}

// NormalizeDate converts a date from any accepted input form to the
// canonical YYYY-MM-DD storage form.
func NormalizeDate(value string) (string, error) {
	parsed, err := ParseDate(value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed.Format(DateLayout), nil
}

// DisplayDate converts a canonically stored date to DD/MM/YYYY. The
// input comes back unchanged when it does not parse, matching how the
// UI tolerates legacy rows.
func DisplayDate(stored string) string {
	if stored == "" {
		return ""
	}
	parsed, err := ParseDate(stored)
	if err != nil {
		return stored
	}
	return parsed.Format(DisplayLayout)
}

// Today returns the current date in canonical storage form.
func Today() string {
	return time.Now().Format(DateLayout)
}
