// Command widget polls a weather conditions feed and publishes the rendered
// report to HTTP clients and the configured sinks.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/weather-widget/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/weather-widget/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-widget/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/weather-widget/internal/adapter/mqtt"
	"github.com/couchcryptid/weather-widget/internal/adapter/sqlite"
	"github.com/couchcryptid/weather-widget/internal/config"
	"github.com/couchcryptid/weather-widget/internal/observability"
	"github.com/couchcryptid/weather-widget/internal/pipeline"
	"github.com/couchcryptid/weather-widget/internal/report"
)

// closableSink is a pipeline sink that holds a connection.
type closableSink interface {
	pipeline.Sink
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	logger.Info("config loaded",
		"conditions_url", cfg.ConditionsURL,
		"settings_file", cfg.SettingsFile,
		"poll_interval", cfg.PollInterval,
	)

	fetcher, err := fetch.New(cfg.ConditionsURL, fetch.HTTPOptions{
		Timeout:    cfg.FetchTimeout,
		TrustStore: cfg.TrustStore,
	}, logger)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, history, err := openSinks(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open report sinks", "error", err)
		os.Exit(1)
	}

	board := report.NewBoard()
	pipeSinks := make([]pipeline.Sink, len(sinks))
	for i, s := range sinks {
		pipeSinks[i] = s
	}
	p := pipeline.New(fetcher, board, pipeSinks, logger, metrics, pipeline.Config{
		Source:   cfg.ConditionsURL,
		Interval: cfg.PollInterval,
	})

	opts := httpadapter.Options{
		Reports:        board,
		HistoryLimit:   cfg.HistoryLimit,
		ShowWeatherURL: cfg.ShowWeatherURL,
	}
	if history != nil {
		opts.History = history
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, opts, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start poll loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("poll loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("poll loop did not stop before shutdown timeout")
	}
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logger.Error("sink close error", "sink", s.Name(), "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// openSinks connects every enabled sink. The history sink is also returned
// on its own for the /history endpoint.
func openSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]closableSink, *sqlite.History, error) {
	var (
		sinks   []closableSink
		history *sqlite.History
	)
	fail := func(err error) ([]closableSink, *sqlite.History, error) {
		for _, s := range sinks {
			_ = s.Close()
		}
		return nil, nil, err
	}

	if cfg.KafkaEnabled() {
		sinks = append(sinks, kafkaadapter.NewWriter(cfg, logger))
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	if cfg.MQTTEnabled() {
		pub := mqttadapter.NewPublisher(cfg, logger)
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := pub.Connect(connectCtx)
		cancel()
		if err != nil {
			_ = pub.Close()
			return fail(err)
		}
		sinks = append(sinks, pub)
		logger.Info("mqtt sink enabled", "topic", cfg.MQTTTopic)
	}

	if cfg.HistoryEnabled() {
		h, err := sqlite.Open(ctx, cfg.HistoryPath, logger)
		if err != nil {
			return fail(err)
		}
		history = h
		sinks = append(sinks, h)
		logger.Info("history sink enabled", "path", cfg.HistoryPath, "limit", cfg.HistoryLimit)
	}

	return sinks, history, nil
}
