package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/track-asia/service-navigation/internal/repository"
)

// EnvPrefix is prepended to every environment variable, e.g. NAVIGATION_SERVER_PORT.
const EnvPrefix = "NAVIGATION"

// ServiceConfig holds all configuration for the navigation service.
type ServiceConfig struct {
	Server     ServerConfig
	Directions DirectionsConfig
	Events     EventsConfig
	Kafka      KafkaConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Simulation SimulationConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port   string
	AppEnv string
}

// DirectionsConfig configures the remote directions service.
type DirectionsConfig struct {
	BaseURL     string
	AccessToken string
	TokenParam  string
	Geometries  string
	UserAgent   string
	Timeout     time.Duration
}

// EventsConfig configures the in-process event emitter.
type EventsConfig struct {
	BufferSize int
}

// KafkaConfig configures the event sink and the command bridge.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	GroupID       string
	EventsTopic   string
	CommandsTopic string
	RepliesTopic  string
}

// DatabaseConfig configures trip persistence.
type DatabaseConfig struct {
	Enabled  bool
	Postgres repository.PostgresConfig
}

// AuthConfig configures bearer authentication. An empty secret disables it.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// SimulationConfig configures the route simulator.
type SimulationConfig struct {
	Enabled  bool
	Interval time.Duration
	Speed    float64
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")

	v.SetDefault("directions.base_url", "https://maps.track-asia.com/route/v1")
	v.SetDefault("directions.access_token", "")
	v.SetDefault("directions.token_param", "key")
	v.SetDefault("directions.geometries", "polyline")
	v.SetDefault("directions.user_agent", "service-navigation")
	v.SetDefault("directions.timeout", "15s")

	v.SetDefault("events.buffer_size", 256)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_id", "service-navigation")
	v.SetDefault("kafka.events_topic", "navigation.events")
	v.SetDefault("kafka.commands_topic", "navigation.commands")
	v.SetDefault("kafka.replies_topic", "navigation.replies")

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "navigation_db")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.interval", "1s")
	v.SetDefault("simulation.speed", 13.9)
}

// LoadFrom builds a ServiceConfig from v. Defaults must already be set.
func LoadFrom(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Server: ServerConfig{
			Port:   v.GetString("server.port"),
			AppEnv: v.GetString("server.env"),
		},
		Directions: DirectionsConfig{
			BaseURL:     strings.TrimSpace(v.GetString("directions.base_url")),
			AccessToken: v.GetString("directions.access_token"),
			TokenParam:  v.GetString("directions.token_param"),
			Geometries:  v.GetString("directions.geometries"),
			UserAgent:   v.GetString("directions.user_agent"),
			Timeout:     v.GetDuration("directions.timeout"),
		},
		Events: EventsConfig{
			BufferSize: v.GetInt("events.buffer_size"),
		},
		Kafka: KafkaConfig{
			Enabled:       v.GetBool("kafka.enabled"),
			Brokers:       splitList(v.GetString("kafka.brokers")),
			GroupID:       v.GetString("kafka.group_id"),
			EventsTopic:   v.GetString("kafka.events_topic"),
			CommandsTopic: v.GetString("kafka.commands_topic"),
			RepliesTopic:  v.GetString("kafka.replies_topic"),
		},
		Database: DatabaseConfig{
			Enabled: v.GetBool("db.enabled"),
			Postgres: repository.PostgresConfig{
				Host:     v.GetString("db.host"),
				Port:     v.GetString("db.port"),
				User:     v.GetString("db.user"),
				Password: v.GetString("db.password"),
				DBName:   v.GetString("db.name"),
				SSLMode:  v.GetString("db.sslmode"),
			},
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Simulation: SimulationConfig{
			Enabled:  v.GetBool("simulation.enabled"),
			Interval: v.GetDuration("simulation.interval"),
			Speed:    v.GetFloat64("simulation.speed"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *ServiceConfig) Validate() error {
	if c.Directions.BaseURL == "" {
		return errors.New("directions base URL is required")
	}
	if c.Directions.Timeout <= 0 {
		return fmt.Errorf("directions timeout must be positive, got %s", c.Directions.Timeout)
	}
	if c.Events.BufferSize < 1 {
		return fmt.Errorf("events buffer size must be at least 1, got %d", c.Events.BufferSize)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka is enabled but no brokers are configured")
	}
	if c.Simulation.Enabled && (c.Simulation.Interval <= 0 || c.Simulation.Speed <= 0) {
		return errors.New("simulation interval and speed must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
