package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultConditionsURL  = "https://w1.weather.gov/xml/current_obs/KBWI.xml"
	DefaultShowWeatherURL = "https://www.weather.gov/lwx"
)

var validate = validator.New()

// Config holds all widget settings. Values come from the environment first,
// then the settings file, then built-in defaults.
type Config struct {
	// ConditionsURL is polled for the conditions payload. It may also be a
	// file:// URL or a bare path.
	ConditionsURL  string        `validate:"required"`
	ShowWeatherURL string        `validate:"required,url"`
	PollInterval   time.Duration `validate:"gt=0"`
	FetchTimeout   time.Duration `validate:"gte=0"`
	TrustStore     string        `validate:"omitempty,file"`

	HTTPAddr        string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=json text"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	KafkaBrokers []string
	KafkaTopic   string `validate:"required_with=KafkaBrokers"`

	MQTTBroker   string
	MQTTTopic    string `validate:"required_with=MQTTBroker"`
	MQTTClientID string `validate:"required_with=MQTTBroker"`

	HistoryPath  string
	HistoryLimit int `validate:"gt=0"`

	// SettingsFile is the file the persistent settings were read from, empty
	// when none is in use.
	SettingsFile string
}

// KafkaEnabled reports whether snapshots are produced to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// MQTTEnabled reports whether snapshots are published over MQTT.
func (c *Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

// HistoryEnabled reports whether snapshots are recorded in SQLite.
func (c *Config) HistoryEnabled() bool { return c.HistoryPath != "" }

// Load reads configuration, applying defaults where unset. A missing
// settings file is created with the default feed URLs.
func Load() (*Config, error) {
	settingsPath, err := settingsFilePath()
	if err != nil {
		return nil, err
	}

	var file map[string]string
	if settingsPath != "" {
		file, err = loadSettingsFile(settingsPath)
		if err != nil {
			return nil, err
		}
	}
	env := lookup{file: file}

	pollInterval, err := env.duration("POLL_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := env.duration("FETCH_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := env.duration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	historyLimit, err := env.integer("HISTORY_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ConditionsURL:   env.get("WX_CONDITIONS_URL", DefaultConditionsURL),
		ShowWeatherURL:  env.get("SHOW_WEATHER_URL", DefaultShowWeatherURL),
		PollInterval:    pollInterval,
		FetchTimeout:    fetchTimeout,
		TrustStore:      env.get("TRUST_STORE", ""),
		HTTPAddr:        env.get("HTTP_ADDR", ":8080"),
		LogLevel:        env.get("LOG_LEVEL", "info"),
		LogFormat:       env.get("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    parseBrokers(env.get("KAFKA_BROKERS", "")),
		KafkaTopic:      env.get("KAFKA_TOPIC", "weather-reports"),
		MQTTBroker:      env.get("MQTT_BROKER", ""),
		MQTTTopic:       env.get("MQTT_TOPIC", "weather/report"),
		MQTTClientID:    env.get("MQTT_CLIENT_ID", "weather-widget"),
		HistoryPath:     env.get("HISTORY_PATH", ""),
		HistoryLimit:    historyLimit,
		SettingsFile:    settingsPath,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// settingsFilePath resolves SETTINGS_FILE. "none" disables the file. Without
// a user config directory there is no default location and no file is used.
func settingsFilePath() (string, error) {
	if v := os.Getenv("SETTINGS_FILE"); v != "" {
		if v == "none" {
			return "", nil
		}
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", nil //nolint:nilerr // no home directory, run on env and defaults
	}
	return filepath.Join(dir, "weather-widget", "weather-widget.env"), nil
}

// loadSettingsFile reads the settings file, writing one with the default
// feed URLs first if it does not exist.
func loadSettingsFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err == nil {
		return values, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read SETTINGS_FILE %s: %w", path, err)
	}

	defaults := map[string]string{
		"WX_CONDITIONS_URL": DefaultConditionsURL,
		"SHOW_WEATHER_URL":  DefaultShowWeatherURL,
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	if err := godotenv.Write(defaults, path); err != nil {
		return nil, fmt.Errorf("write SETTINGS_FILE %s: %w", path, err)
	}
	return defaults, nil
}

// lookup resolves a key from the process environment, then the settings file.
type lookup struct {
	file map[string]string
}

func (l lookup) get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := l.file[key]; ok && v != "" {
		return v
	}
	return def
}

func (l lookup) duration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(l.get(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func (l lookup) integer(key string, def int) (int, error) {
	s := l.get(key, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
