package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/weather-widget/internal/config"
	"github.com/couchcryptid/weather-widget/internal/report"
)

const (
	qosAtLeastOnce = 1
	publishTimeout = 5 * time.Second
)

// tokenPublisher is the part of paho.Client the sink needs.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends each report snapshot to an MQTT topic as a retained
// message, so a subscriber that connects later still gets the current
// report. It implements pipeline.Sink.
type Publisher struct {
	client paho.Client
	pub    tokenPublisher
	topic  string
	logger *slog.Logger
}

// NewPublisher configures a client for cfg.MQTTBroker. Call Connect before
// publishing.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL(cfg.MQTTBroker))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := paho.NewClient(opts)
	return &Publisher{
		client: client,
		pub:    client,
		topic:  cfg.MQTTTopic,
		logger: logger,
	}
}

// Connect waits for the initial broker connection or ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.client.IsConnected() {
		return nil
	}
	if err := waitToken(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "mqtt" }

// Publish sends s as a retained JSON document.
func (p *Publisher) Publish(ctx context.Context, s report.Snapshot) error {
	data, err := json.Marshal(s.Document())
	if err != nil {
		return fmt.Errorf("marshal report snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := waitToken(ctx, p.pub.Publish(p.topic, qosAtLeastOnce, true, data)); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("report published to mqtt", "topic", p.topic, "cycle_id", s.CycleID)
	return nil
}

// Close disconnects, giving in-flight messages a moment to drain.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}

func waitToken(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}
