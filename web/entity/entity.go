// Package entity defines the data structures exchanged by the web API.
package entity

import (
	"strconv"
	"time"

	"github.com/oplog/oplog/logbook"
)

// Msg is the envelope of every API response.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// StatsQuery carries the optional owner and year of a stats request.
type StatsQuery struct {
	Owner string `form:"owner"`
	Year  string `form:"year"`
}

// YearOrCurrent parses Year, defaulting to the current year.
func (q StatsQuery) YearOrCurrent() (int, error) {
	if q.Year == "" {
		return time.Now().Year(), nil
	}
	return strconv.Atoi(q.Year)
}

// ExportQuery is a listing filter plus the requested view.
type ExportQuery struct {
	logbook.Filter
	View string `form:"view"`
}
