// Package config loads vision-statusd settings from YAML, environment
// variables and flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/observability"
	"github.com/signalsfoundry/vision-status/internal/telemetry"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete daemon configuration.
type Config struct {
	Log              logging.Config              `yaml:"log"`
	MQTT             MQTTConfig                  `yaml:"mqtt"`
	Replay           ReplayConfig                `yaml:"replay"`
	GRPCAddr         string                      `yaml:"grpc_addr"`
	MetricsAddr      string                      `yaml:"metrics_addr"`
	CapabilitiesFile string                      `yaml:"capabilities_file"`
	Tracing          observability.TracingConfig `yaml:"tracing"`
	ShutdownTimeout  time.Duration               `yaml:"shutdown_timeout"`
}

// MQTTConfig describes the telemetry broker. Telemetry is read from
// "<topic_prefix>/<channel>" and warnings are published on warning_topic.
type MQTTConfig struct {
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"`
	TopicPrefix    string        `yaml:"topic_prefix"`
	WarningTopic   string        `yaml:"warning_topic"`
	Codec          string        `yaml:"codec"` // json | msgpack
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// ReplayConfig plays a scripted telemetry file instead of reading a broker.
type ReplayConfig struct {
	File string `yaml:"file"`
	Mode string `yaml:"mode"` // realtime | accelerated
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
		MQTT: MQTTConfig{
			ClientID:       "vision-statusd",
			TopicPrefix:    "aircraft",
			WarningTopic:   "aircraft/warnings",
			Codec:          "json",
			QoS:            1,
			ConnectTimeout: 5 * time.Second,
		},
		Replay: ReplayConfig{
			Mode: "realtime",
		},
		GRPCAddr:        ":50061",
		MetricsAddr:     ":9091",
		Tracing:         observability.DefaultTracingConfig(),
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads path over the defaults, then applies environment variables and
// finally overrides, typically command-line flags. An empty path loads
// defaults and environment only. The result is validated.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return Config{}, err
		}
	}
	cfg = cfg.ApplyEnv()
	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads YAML from r over the defaults without touching the
// environment or validating.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from VISION_* environment variables.
func (c Config) ApplyEnv() Config {
	setString(&c.Log.Level, "VISION_LOG_LEVEL")
	setString(&c.Log.Format, "VISION_LOG_FORMAT")
	setString(&c.Log.File, "VISION_LOG_FILE")
	setInt(&c.Log.MaxSizeMB, "VISION_LOG_MAX_SIZE_MB")

	setString(&c.MQTT.Broker, "VISION_MQTT_BROKER")
	setString(&c.MQTT.ClientID, "VISION_MQTT_CLIENT_ID")
	setString(&c.MQTT.TopicPrefix, "VISION_MQTT_TOPIC_PREFIX")
	setString(&c.MQTT.WarningTopic, "VISION_MQTT_WARNING_TOPIC")
	setString(&c.MQTT.Codec, "VISION_MQTT_CODEC")

	setString(&c.Replay.File, "VISION_REPLAY_FILE")
	setString(&c.Replay.Mode, "VISION_REPLAY_MODE")

	setString(&c.GRPCAddr, "VISION_GRPC_ADDR")
	setString(&c.MetricsAddr, "VISION_METRICS_ADDR")
	setString(&c.CapabilitiesFile, "VISION_CAPABILITIES_FILE")

	c.Tracing = c.Tracing.ApplyEnv()
	return c
}

// Validate reports every problem found, joined, wrapped in ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc_addr is required"))
	}
	if c.MQTT.Broker == "" && c.Replay.File == "" {
		errs = append(errs, errors.New("one of mqtt.broker or replay.file is required"))
	}
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		errs = append(errs, errors.New("mqtt.client_id is required with mqtt.broker"))
	}
	if _, err := telemetry.CodecByName(c.MQTT.Codec); err != nil {
		errs = append(errs, fmt.Errorf("mqtt.codec: %w", err))
	}
	if c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
	}
	if c.MQTT.ConnectTimeout < 0 {
		errs = append(errs, errors.New("mqtt.connect_timeout must not be negative"))
	}
	if _, err := telemetry.ParseMode(c.Replay.Mode); err != nil {
		errs = append(errs, fmt.Errorf("replay.mode: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// UsesReplay reports whether telemetry comes from a replay script.
func (c Config) UsesReplay() bool {
	return c.Replay.File != ""
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
