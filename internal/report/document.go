package report

import "time"

// Document is the wire form of a Snapshot shared by the HTTP API and the
// report sinks.
type Document struct {
	CycleID         string    `json:"cycle_id"`
	PublishedAt     time.Time `json:"published_at"`
	Header          string    `json:"header"`
	Lines           []string  `json:"lines"`
	Text            string    `json:"text"`
	IconTemperature *int64    `json:"icon_temperature,omitempty"`
	IconLabel       string    `json:"icon_label"`
}

// Document converts s to its wire form.
func (s Snapshot) Document() Document {
	lines := s.Report.Lines
	if lines == nil {
		lines = []string{}
	}
	return Document{
		CycleID:         s.CycleID,
		PublishedAt:     s.PublishedAt,
		Header:          s.Report.Header,
		Lines:           lines,
		Text:            s.Text(),
		IconTemperature: s.Report.IconTemperature,
		IconLabel:       s.IconLabel(),
	}
}
