package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-widget/internal/domain"
	"github.com/couchcryptid/weather-widget/internal/observability"
	"github.com/couchcryptid/weather-widget/internal/report"
)

// DefaultInterval is the pause between the end of one cycle and the start of
// the next.
const DefaultInterval = 60 * time.Second

// Fetcher retrieves the raw conditions payload for one cycle.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Config tunes a PollLoop. Zero values take the defaults.
type Config struct {
	// Source names the payload origin in logs and errors.
	Source   string
	Interval time.Duration
	Header   string
	// Rules replaces domain.DefaultRules when non-nil.
	Rules []domain.Rule
	Clock clockwork.Clock
	// NewCycleID defaults to random UUIDs.
	NewCycleID func() string
}

// PollLoop fetches the payload, builds the report and publishes it to the
// board and sinks, once per interval.
type PollLoop struct {
	fetcher   Fetcher
	extractor *domain.FieldExtractor
	board     *report.Board
	sinks     []Sink
	logger    *slog.Logger
	metrics   *observability.Metrics

	source   string
	header   string
	interval time.Duration
	clock    clockwork.Clock
	newID    func() string
}

// New creates a PollLoop publishing to board and then to each sink.
func New(f Fetcher, board *report.Board, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *PollLoop {
	p := &PollLoop{
		fetcher:   f,
		extractor: domain.NewFieldExtractor(cfg.Rules),
		board:     board,
		sinks:     sinks,
		logger:    logger,
		metrics:   metrics,
		source:    cfg.Source,
		header:    cfg.Header,
		interval:  cfg.Interval,
		clock:     cfg.Clock,
		newID:     cfg.NewCycleID,
	}
	if p.header == "" {
		p.header = domain.DefaultHeader
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// CheckReadiness reports whether a cycle has published a report.
func (p *PollLoop) CheckReadiness(ctx context.Context) error {
	return p.board.CheckReadiness(ctx)
}

// Run polls until ctx is cancelled. The first cycle starts immediately.
// Failed cycles are logged and skipped; only cancellation ends the loop.
func (p *PollLoop) Run(ctx context.Context) error {
	p.logger.Info("poll loop started", "source", p.source, "interval", p.interval)
	p.metrics.PollLoopRunning.Set(1)
	defer p.metrics.PollLoopRunning.Set(0)

	for {
		if ctx.Err() != nil {
			p.logger.Info("poll loop stopping", "reason", ctx.Err())
			return nil
		}

		// Errors are already logged and counted by the cycle.
		_ = p.RunOnce(ctx)

		if !sleepWithContext(ctx, p.clock, p.interval) {
			p.logger.Info("poll loop stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce performs a single fetch-extract-publish cycle. On error the board
// keeps its previous snapshot.
func (p *PollLoop) RunOnce(ctx context.Context) error {
	start := p.clock.Now()
	cycleID := p.newID()
	logger := p.logger.With("cycle_id", cycleID)

	payload, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ferr := &domain.PayloadFetchError{Source: p.source, Err: err}
		logger.Warn("fetch failed, keeping previous report", "error", ferr)
		p.metrics.FetchErrors.Inc()
		p.metrics.PollCycles.WithLabelValues("fetch_error").Inc()
		return ferr
	}

	rep, err := domain.BuildReport(string(payload), p.extractor, p.header)
	if err != nil {
		var perr *domain.NumericParseError
		if errors.As(err, &perr) {
			p.metrics.ParseErrors.WithLabelValues(perr.Field.String()).Inc()
		}
		logger.Warn("extract failed, keeping previous report", "error", err, "bytes", len(payload))
		p.metrics.PollCycles.WithLabelValues("parse_error").Inc()
		return err
	}

	// A payload without a temperature keeps the last known icon.
	if rep.IconTemperature == nil {
		if prev, ok := p.board.Current(); ok && prev.Report.IconTemperature != nil {
			icon := *prev.Report.IconTemperature
			rep.IconTemperature = &icon
		}
	}

	snap := report.Snapshot{
		CycleID:     cycleID,
		PublishedAt: p.clock.Now().UTC(),
		Report:      rep,
	}
	p.board.Publish(snap)
	p.record(snap, start)

	logger.Info("report published",
		"lines", rep.Scanned,
		"fields", len(rep.Lines),
		"icon", snap.IconLabel(),
	)

	p.fanOut(ctx, snap, logger)
	return nil
}

func (p *PollLoop) record(snap report.Snapshot, start time.Time) {
	rep := snap.Report
	p.metrics.PollCycles.WithLabelValues("published").Inc()
	p.metrics.LinesScanned.Add(float64(rep.Scanned))
	for _, f := range rep.Fields {
		p.metrics.FieldsExtracted.WithLabelValues(f.String()).Inc()
	}
	if rep.IconTemperature != nil {
		p.metrics.IconTemperature.Set(float64(*rep.IconTemperature))
	}
	p.metrics.LastSuccess.Set(float64(snap.PublishedAt.Unix()))
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
