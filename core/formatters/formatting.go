package formatters

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fbz-tec/docvault/internal/logger"
)

// DefaultTimeFormat is the user-facing layout applied to timestamps.
const DefaultTimeFormat = "yyyy-MM-dd HH:mm:ss"

var timeFormatReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
	"SSS", "000", // Milliseconds
	"S", "0", // Deciseconds
)

// formatValue is the central conversion shared by every export format.
// Timestamps become strings in the user layout and zone; tag lists are
// never nil.
func formatValue(val any, userTimefmt string, timeZone string) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		layout, loc := UserTimeZoneFormat(userTimefmt, timeZone)
		return v.In(loc).Format(layout)
	case []string:
		if v == nil {
			return []string{}
		}
		return v
	case []byte:
		return string(v)
	case float32:
		return fmt.Sprintf("%.15g", v)
	case float64:
		return fmt.Sprintf("%.15g", v)
	default:
		return v
	}
}

// FormatJSONValue formats a value for JSON export.
func FormatJSONValue(val any, userTimefmt string, timeZone string) any {
	return formatValue(val, userTimefmt, timeZone)
}

// FormatCSVValue formats a value for CSV export. Lists are written as a JSON
// array so they survive any delimiter.
func FormatCSVValue(val any, userTimefmt string, timeZone string) string {
	result := formatValue(val, userTimefmt, timeZone)

	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return jsonList(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatXMLValue formats a scalar value for XML export. Lists are expanded
// into child elements by the exporter and never reach this function.
func FormatXMLValue(val any, userTimefmt string, timeZone string) string {
	result := formatValue(val, userTimefmt, timeZone)

	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatYAMLValue formats a value for YAML export.
func FormatYAMLValue(val any, userTimefmt string, timeZone string) any {
	return formatValue(val, userTimefmt, timeZone)
}

// FormatXLSXValue formats a value for Excel. Timestamps stay time.Time, moved
// into the requested zone, so Excel stores them as dates.
func FormatXLSXValue(val any, userTimefmt, timeZone string) any {
	switch v := val.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		_, loc := UserTimeZoneFormat(userTimefmt, timeZone)
		return v.In(loc)
	case []string:
		return jsonList(v)
	}
	return formatValue(val, userTimefmt, timeZone)
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// UserTimeZoneFormat returns the Go layout for userTimefmt and the location
// for timeZone. An empty or unknown zone falls back to local time.
func UserTimeZoneFormat(userTimefmt string, timeZone string) (string, *time.Location) {

	if userTimefmt == "" {
		userTimefmt = DefaultTimeFormat
	}
	layout := ConvertUserTimeFormat(userTimefmt)

	if timeZone == "" {
		return layout, time.Local
	}

	loc, err := time.LoadLocation(timeZone)

	if err != nil {
		logger.Warn("Invalid timezone %q, using local time: %v", timeZone, err)
		return layout, time.Local
	}

	return layout, loc
}

// ConvertUserTimeFormat turns a yyyy-MM-dd style pattern into a Go layout.
func ConvertUserTimeFormat(userTimefmt string) string {
	return timeFormatReplacer.Replace(userTimefmt)
}
