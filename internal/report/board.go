// Package report holds the most recently published weather report for
// readers outside the poll loop.
package report

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-widget/internal/domain"
)

// Snapshot is a report as published by one successful poll cycle.
type Snapshot struct {
	CycleID     string        `json:"cycle_id"`
	PublishedAt time.Time     `json:"published_at"`
	Report      domain.Report `json:"report"`
}

// Text renders the report body.
func (s Snapshot) Text() string { return s.Report.Text() }

// IconLabel renders the icon temperature, "?°" when absent.
func (s Snapshot) IconLabel() string { return s.Report.IconLabel() }

// Board is a single-writer cell for the latest Snapshot. The report and its
// icon temperature travel in one value, so readers never see one without
// the other.
type Board struct {
	current atomic.Pointer[Snapshot]
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Publish replaces the current snapshot.
func (b *Board) Publish(s Snapshot) {
	b.current.Store(&s)
}

// Current returns the latest snapshot and whether one has been published.
func (b *Board) Current() (Snapshot, bool) {
	s := b.current.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// CheckReadiness returns nil once a report has been published.
func (b *Board) CheckReadiness(_ context.Context) error {
	if b.current.Load() == nil {
		return errors.New("no weather report published yet")
	}
	return nil
}
