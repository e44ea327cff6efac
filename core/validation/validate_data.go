package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/fbz-tec/docvault/core/formatters"
)

// ValidateTimeZone checks if a timezone string is valid.
// Returns an error if the timezone cannot be loaded. Empty string is considered valid (uses local time).
func ValidateTimeZone(timezone string) error {
	if timezone == "" {
		return nil // Empty is valid (uses Local)
	}

	_, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	return nil
}

// ValidateTimeFormat validates that a time format string is valid by testing it with a known time.
// The test instant must differ from Go's reference time, or every layout would format to itself.
// Returns an error if the format cannot be used to format and parse a time value.
func ValidateTimeFormat(format string) error {

	if strings.TrimSpace(format) == "" {
		return fmt.Errorf("time format cannot be empty")
	}

	testTime := time.Date(2023, 11, 22, 18, 30, 45, 123456789, time.UTC)
	layout := formatters.ConvertUserTimeFormat(format)

	// A pattern with no date or time token formats to itself.
	formatted := testTime.Format(layout)
	if formatted == layout {
		return fmt.Errorf("invalid time format %q: no date or time fields", format)
	}

	if _, err := time.Parse(layout, formatted); err != nil {
		return fmt.Errorf("invalid time format %q: %w", format, err)
	}

	return nil
}

// ParseDelimiter turns the --delimiter flag into a rune. `\t` selects tab.
func ParseDelimiter(delim string) (rune, error) {
	if delim == "\t" || strings.TrimSpace(delim) == `\t` {
		return '\t', nil
	}

	delim = strings.TrimSpace(delim)
	if delim == "" {
		return 0, fmt.Errorf("delimiter cannot be empty")
	}

	runes := []rune(delim)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character (use \\t for tab)")
	}

	switch runes[0] {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("delimiter %q is not allowed in CSV", runes[0])
	}

	return runes[0], nil
}
