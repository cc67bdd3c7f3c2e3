package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-widget/internal/config"
	"github.com/couchcryptid/weather-widget/internal/report"
)

// Writer produces each published report snapshot to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Publish writes one message keyed by the cycle ID.
func (w *Writer) Publish(ctx context.Context, s report.Snapshot) error {
	msg, err := serializeToMessage(s)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write report message: %w", err)
	}
	w.logger.Debug("report produced", "topic", w.writer.Topic, "cycle_id", s.CycleID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message.
func serializeToMessage(s report.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s.Document())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report snapshot: %w", err)
	}

	icon := ""
	if t := s.Report.IconTemperature; t != nil {
		icon = strconv.FormatInt(*t, 10)
	}

	return kafkago.Message{
		Key:   []byte(s.CycleID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "published_at", Value: []byte(s.PublishedAt.Format(time.RFC3339))},
			{Key: "icon_temperature", Value: []byte(icon)},
		},
	}, nil
}
