package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-widget/internal/report"
)

// Sink receives every published snapshot after the board has been updated.
type Sink interface {
	Name() string
	Publish(ctx context.Context, s report.Snapshot) error
}

// fanOut delivers snap to every sink. A failing sink does not stop delivery
// to the others and never affects the board.
func (p *PollLoop) fanOut(ctx context.Context, snap report.Snapshot, logger *slog.Logger) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			logger.Warn("sink publish failed", "sink", s.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
		}
	}
}
