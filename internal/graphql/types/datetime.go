package types

import (
	"fmt"
	"strings"
	"time"
)

// dateTimeLayout is the wire format: second precision, literal Z.
const dateTimeLayout = "2006-01-02T15:04:05Z"

// dateTimeLayouts are the stored formats ParseDateTime accepts, tried in
// order. They cover RFC3339 and the text layouts SQLite writes.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDateTime renders t as RFC3339 in UTC with second precision.
func FormatDateTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(dateTimeLayout)
}

// ParseDateTime parses a stored timestamp. Values without an offset are UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
