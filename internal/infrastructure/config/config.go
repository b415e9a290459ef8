package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Gateway and controller connection kinds.
const (
	TypeSerial    = "Serial"
	TypeTCP       = "TCP"
	TypeTCPServer = "TCPServer"
	TypeMQTT      = "MQTT"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig      `toml:"Server" yaml:"Server"`
	Gateway    ConnectionConfig  `toml:"Gateway" yaml:"Gateway"`
	Controller *ConnectionConfig `toml:"Controller" yaml:"Controller"`
	Telemetry  TelemetryConfig   `toml:"Telemetry" yaml:"Telemetry"`
}

// ServerConfig contains the store, logging and HTTP settings.
type ServerConfig struct {
	// DatabaseURL is the path to the SQLite database file. Required.
	DatabaseURL string `toml:"database_url" yaml:"database_url"`

	// LogLevel filters log output: debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFormat selects the log handler: json or text.
	LogFormat string `toml:"log_format" yaml:"log_format"`

	// APIListen is the host:port the REST/WoT server binds to.
	APIListen string `toml:"api_listen" yaml:"api_listen"`

	// JWTSecret, when non-empty, requires a valid HS256 bearer token on
	// mutating API endpoints.
	JWTSecret string `toml:"jwt_secret" yaml:"jwt_secret"`
}

// ConnectionConfig describes one link endpoint: the gateway, or the
// optional upstream controller.
type ConnectionConfig struct {
	// Type is one of Serial, TCP, TCPServer, MQTT. A bare "TCP" means
	// client for the gateway and server for the controller, matching how
	// each peer reaches the proxy.
	Type string `toml:"type" yaml:"type"`

	// Port is the serial device path or the host:port address.
	Port string `toml:"port" yaml:"port"`

	// BaudRate applies to serial links.
	BaudRate int `toml:"baud_rate" yaml:"baud_rate"`

	// TimeoutEnabled applies a 40-second read deadline to TCP links.
	TimeoutEnabled bool `toml:"timeout_enabled" yaml:"timeout_enabled"`

	// Broker and BrokerPort locate the MQTT broker.
	Broker     string `toml:"broker" yaml:"broker"`
	BrokerPort int    `toml:"broker_port" yaml:"broker_port"`

	// PublishTopicPrefix is the MQTT topic prefix: the link subscribes to
	// <prefix>-out/# and publishes under <prefix>-in/.
	PublishTopicPrefix string `toml:"publish_topic_prefix" yaml:"publish_topic_prefix"`
}

// TelemetryConfig contains the optional InfluxDB sensor-state sink.
type TelemetryConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	URL           string `toml:"url" yaml:"url"`
	Token         string `toml:"token" yaml:"token"`
	Org           string `toml:"org" yaml:"org"`
	Bucket        string `toml:"bucket" yaml:"bucket"`
	BatchSize     int    `toml:"batch_size" yaml:"batch_size"`
	FlushInterval int    `toml:"flush_interval" yaml:"flush_interval"`
}

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "MYSCONTROLLER_"

// Load reads configuration from a TOML or YAML file (selected by
// extension), applying defaults first and environment overrides last, then
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyConnectionDefaults(&cfg.Gateway)
	if cfg.Controller != nil {
		applyConnectionDefaults(cfg.Controller)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns the hardcoded defaults applied before the file is
// read.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DatabaseURL: "",
			LogLevel:    "info",
			LogFormat:   "json",
			APIListen:   "0.0.0.0:8000",
		},
		Telemetry: TelemetryConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyConnectionDefaults fills the per-link defaults.
func applyConnectionDefaults(c *ConnectionConfig) {
	if c.BaudRate == 0 {
		c.BaudRate = 9600
	}
	if c.BrokerPort == 0 {
		c.BrokerPort = 1883
	}
}

// applyEnvOverrides applies MYSCONTROLLER_* environment variables on top of
// file values.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("SERVER_DATABASE_URL", &cfg.Server.DatabaseURL)
	setString("SERVER_LOG_LEVEL", &cfg.Server.LogLevel)
	setString("SERVER_API_LISTEN", &cfg.Server.APIListen)
	setString("SERVER_JWT_SECRET", &cfg.Server.JWTSecret)
	setString("GATEWAY_TYPE", &cfg.Gateway.Type)
	setString("GATEWAY_PORT", &cfg.Gateway.Port)
	setBool("TELEMETRY_ENABLED", &cfg.Telemetry.Enabled)
	setString("TELEMETRY_URL", &cfg.Telemetry.URL)
	setString("TELEMETRY_TOKEN", &cfg.Telemetry.Token)
}

// Validate checks the loaded configuration for the errors that should stop
// startup rather than surface later as connection failures.
func (c *Config) Validate() error {
	if c.Server.DatabaseURL == "" {
		return errors.New("config: Server.database_url is required")
	}
	if err := c.Gateway.validate("Gateway"); err != nil {
		return err
	}
	if c.Controller != nil {
		if err := c.Controller.validate("Controller"); err != nil {
			return err
		}
	}
	if c.Telemetry.Enabled && c.Telemetry.URL == "" {
		return errors.New("config: Telemetry.url is required when telemetry is enabled")
	}
	return nil
}

func (c *ConnectionConfig) validate(section string) error {
	switch c.Type {
	case TypeSerial, TypeTCP, TypeTCPServer:
		if c.Port == "" {
			return fmt.Errorf("config: %s.port is required for type %s", section, c.Type)
		}
	case TypeMQTT:
		if c.Broker == "" {
			return fmt.Errorf("config: %s.broker is required for type MQTT", section)
		}
		if c.PublishTopicPrefix == "" {
			return fmt.Errorf("config: %s.publish_topic_prefix is required for type MQTT", section)
		}
	case "":
		return fmt.Errorf("config: %s.type is required (Serial, TCP, TCPServer or MQTT)", section)
	default:
		return fmt.Errorf("config: %s.type %q is not one of Serial, TCP, TCPServer, MQTT", section, c.Type)
	}
	return nil
}
