// Package report implements the report generation pipeline: aggregation,
// chart rendering, document composition, export and persistence of
// date-bounded transaction reports.
package report

import (
	"strings"
	"time"

	"finlog/internal/core"
)

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Format is the artifact format of a generated report.
type Format string

// ParseFormat validates a requested format. An empty string defaults to
// PDF, everything outside pdf/csv/json is rejected before any pipeline
// work begins.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return FormatPDF, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", ErrInvalidFormat
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Metadata is the persisted record of one generated report. Created
// exactly once per successful generation, after the artifact bytes are
// confirmed written, and immutable afterwards.
type Metadata struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	PeriodLabel     string    `json:"period"`
	Format          Format    `json:"format"`
	StorageLocation string    `json:"file_url"`
	SizeBytes       int64     `json:"size"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// ChartSet carries the rendered chart images for one report. A nil slice
// means "image unavailable" and the composer skips that embed.
type ChartSet struct {
	Pie []byte
	Bar []byte
}

// ComposeInput is everything the document composer needs to lay out one
// report page.
type ComposeInput struct {
	OwnerID      string
	Transactions []core.Transaction
	Summary      core.Summary
	Charts       ChartSet
	PeriodStart  time.Time
	PeriodEnd    time.Time
}

// PeriodLabel renders a human-readable start/end range, e.g.
// "01 Jan 2025 → 31 Jan 2025".
func PeriodLabel(start, end time.Time) string {
	return start.Format("02 Jan 2006") + " → " + end.Format("02 Jan 2006")
}

// NormalizeRange applies the one date-boundary rule used everywhere in
// this system: inclusive start at midnight UTC, inclusive end normalized
// to the last nanosecond of its day in UTC. A same-day range therefore
// covers the whole day.
func NormalizeRange(start, end time.Time) (time.Time, time.Time) {
	s := start.UTC()
	s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	e := end.UTC()
	e = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return s, e
}

// MonthlyRange is the window used by the scheduled batch: the first day
// of the previous month through now.
func MonthlyRange(now time.Time) (time.Time, time.Time) {
	end := now.UTC()
	start := time.Date(end.Year(), end.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}
