package logbook

import (
	"strings"
	"time"
)

const (
	// DateLayout is the display form stored for every record.
	DateLayout = "02.01.2006"
	// SortLayout is the lexicographically sortable form.
	SortLayout = "2006-01-02"

	// parseLayout accepts one or two digit days and months.
	parseLayout = "2.1.2006"
)

// ParseDate parses a day.month.year date. Impossible dates such as
// 29.02.2021 are rejected.
func ParseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return time.Time{}, &FormatError{Input: text}
	}
	return t, nil
}

func IsValidDate(text string) bool {
	_, err := ParseDate(text)
	return err == nil
}

// ToSortKey converts a display date to YYYY-MM-DD.
func ToSortKey(text string) (string, error) {
	t, err := ParseDate(text)
	if err != nil {
		return "", err
	}
	return t.Format(SortLayout), nil
}

// NormalizeDate rewrites a valid date with two-digit day and month. Invalid
// input is returned trimmed but otherwise unchanged.
func NormalizeDate(text string) string {
	t, err := ParseDate(text)
	if err != nil {
		return strings.TrimSpace(text)
	}
	return t.Format(DateLayout)
}
