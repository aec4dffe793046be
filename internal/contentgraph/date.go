package contentgraph

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrorInvalidTimestamp = errors.New("invalid timestamp")

// Layouts accepted for updated timestamps, in the order they are tried. The
// compact form is what the CMS stores internally and occasionally leaks
// through the content graph.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"20060102T150405Z",
	"20060102T150405",
	time.DateOnly,
}

func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrorInvalidTimestamp, value)
}

// FormatHTTPDate converts an ISO-8601 timestamp into an HTTP-date, e.g.
// "2025-10-21T07:28:00.000Z" becomes "Tue, 21 Oct 2025 07:28:00 GMT".
func FormatHTTPDate(iso string) (string, error) {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(http.TimeFormat), nil
}
