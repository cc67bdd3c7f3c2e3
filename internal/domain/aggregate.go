package domain

import (
	"math"
	"strings"
)

// DefaultHeader opens every report.
const DefaultHeader = "Weather Conditions:"

// Report is the rendered result of one full pass over a payload.
type Report struct {
	Header string   `json:"header"`
	Lines  []string `json:"lines"`

	// IconTemperature is the rounded temperature for the tray icon, nil when
	// the payload carried no temperature.
	IconTemperature *int64 `json:"icon_temperature,omitempty"`

	// Fields lists the field of each line, in line order.
	Fields []FieldKey `json:"-"`
	// Scanned is the number of payload lines examined.
	Scanned int `json:"-"`
}

// Text renders the header followed by one line per recognized field.
func (r Report) Text() string {
	if len(r.Lines) == 0 {
		return r.Header
	}
	return r.Header + "\n" + strings.Join(r.Lines, "\n")
}

// IconLabel renders the icon temperature, or "?°" when there is none.
func (r Report) IconLabel() string {
	if r.IconTemperature == nil {
		return "?" + Degrees
	}
	return FormatFixed(float64(*r.IconTemperature), 0) + Degrees
}

// Aggregator accumulates report lines for a single payload. The zero value
// is not usable; call NewAggregator.
type Aggregator struct {
	header  string
	lines   []string
	fields  []FieldKey
	icon    *int64
	scanned int
}

// NewAggregator starts an empty report under header.
func NewAggregator(header string) *Aggregator {
	return &Aggregator{header: header}
}

// Add appends a line for v. A value recognized twice is appended twice.
// A numeric Temperature replaces the pending icon temperature.
func (a *Aggregator) Add(v ExtractedValue) error {
	a.lines = append(a.lines, FormatLine(v))
	a.fields = append(a.fields, v.Field)
	if v.Field == Temperature && v.Numeric != nil {
		icon := RoundHalfUp(*v.Numeric)
		a.icon = &icon
	}
	return nil
}

// Report returns the accumulated report. The aggregator keeps no reference
// to the returned slices.
func (a *Aggregator) Report() Report {
	r := Report{
		Header:  a.header,
		Lines:   append([]string(nil), a.lines...),
		Fields:  append([]FieldKey(nil), a.fields...),
		Scanned: a.scanned,
	}
	if a.icon != nil {
		icon := *a.icon
		r.IconTemperature = &icon
	}
	return r
}

// RoundHalfUp rounds to the nearest integer, halves away from zero.
func RoundHalfUp(n float64) int64 {
	return int64(math.Round(n))
}

// SplitLines splits a payload into lines, dropping a trailing '\r' from each.
func SplitLines(payload string) []string {
	lines := strings.Split(payload, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// BuildReport runs every line of payload through ex and aggregates the
// matches. On error the partial report is discarded.
func BuildReport(payload string, ex *FieldExtractor, header string) (Report, error) {
	agg := NewAggregator(header)
	for _, line := range SplitLines(payload) {
		agg.scanned++
		if err := ex.Scan(line, agg.Add); err != nil {
			return Report{}, err
		}
	}
	return agg.Report(), nil
}
