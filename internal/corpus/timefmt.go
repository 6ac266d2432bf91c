package corpus

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses value with the strftime-style format (for example
// "%Y-%m-%dT%H:%M:%SZ"). An empty format accepts RFC 3339 and plain dates.
// Times without a zone are interpreted as UTC.
func ParseTime(value, format string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if format != "" {
		t, err := strftime.Parse(format, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q with %q: %w", value, format, err)
		}
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %q: unrecognized timestamp", value)
}

// FormatTime renders t with a strftime-style format; an empty format yields
// an ISO date.
func FormatTime(t time.Time, format string) string {
	if format == "" {
		return t.Format(time.DateOnly)
	}
	return strftime.Format(format, t)
}

// ValidateFormat reports whether format can be used for parsing.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	if _, err := strftime.Layout(format); err != nil {
		return fmt.Errorf("time format %q: %w", format, err)
	}
	return nil
}

// recordTime extracts a timestamp from a record field. Numeric values are
// treated as Unix seconds.
func recordTime(rec Record, key, format string) (time.Time, error) {
	value, ok := rec[key]
	if !ok || value == nil {
		return time.Time{}, fmt.Errorf("missing time field %q", key)
	}
	if f, ok := value.(float64); ok {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	str, _ := rec.String(key)
	return ParseTime(str, format)
}
