package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
)

// Config holds all configuration for the dashboard, gateway and processor binaries
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`    // debug, info, warn, error
	Encoding string `mapstructure:"encoding"` // json or console
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type GatewayConfig struct {
	ValidTickers []string `mapstructure:"valid_tickers"`
}

type ProcessorConfig struct {
	NumWorkers int `mapstructure:"num_workers"`
}

// StreamConfig tunes the live quote session.
type StreamConfig struct {
	URL                   string        `mapstructure:"url"`
	TickInterval          time.Duration `mapstructure:"tick_interval"`
	InitialReconnectDelay time.Duration `mapstructure:"initial_reconnect_delay"`
	MaxReconnectDelay     time.Duration `mapstructure:"max_reconnect_delay"`
	MaxBatch              int           `mapstructure:"max_batch"`
	Volatility            float64       `mapstructure:"volatility"`
}

type AlertsConfig struct {
	EvaluateOnTick   bool `mapstructure:"evaluate_on_tick"`
	MaxNotifications int  `mapstructure:"max_notifications"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type DashboardConfig struct {
	Addr         string        `mapstructure:"addr"`
	FetchLatency time.Duration `mapstructure:"fetch_latency"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into the process environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Defaults
	setDefaults(v)

	// 3. Environment: "stream.tick_interval" -> STREAM_TICK_INTERVAL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Flat env vars only reach nested structs through explicit binding
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "logger.level", "logger.encoding")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.group_id")
	bindEnv(v, "gateway.valid_tickers", "processor.num_workers")
	bindEnv(v, "stream.url", "stream.tick_interval", "stream.initial_reconnect_delay",
		"stream.max_reconnect_delay", "stream.max_batch", "stream.volatility")
	bindEnv(v, "alerts.evaluate_on_tick", "alerts.max_notifications")
	bindEnv(v, "gemini.api_key", "gemini.model", "dashboard.addr", "dashboard.fetch_latency")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// 6. Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8081")
	v.SetDefault("app.env", "local")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "market_ticks")
	v.SetDefault("kafka.group_id", "stock-processor-group")

	v.SetDefault("gateway.valid_tickers", catalogue.Symbols())
	v.SetDefault("processor.num_workers", 4)

	v.SetDefault("stream.url", "ws://localhost:8081/ws")
	v.SetDefault("stream.tick_interval", 1500*time.Millisecond)
	v.SetDefault("stream.initial_reconnect_delay", time.Second)
	v.SetDefault("stream.max_reconnect_delay", 30*time.Second)
	v.SetDefault("stream.max_batch", 8)
	v.SetDefault("stream.volatility", 0.02)

	v.SetDefault("alerts.evaluate_on_tick", false)
	v.SetDefault("alerts.max_notifications", 20)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("dashboard.addr", ":8080")
	v.SetDefault("dashboard.fetch_latency", time.Second)
}

// Validate rejects configurations the binaries cannot run with.
func (c *Config) Validate() error {
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	if c.Processor.NumWorkers <= 0 {
		return fmt.Errorf("processor.num_workers must be positive, got %d", c.Processor.NumWorkers)
	}
	if c.Stream.TickInterval <= 0 {
		return fmt.Errorf("stream.tick_interval must be positive")
	}
	if c.Stream.InitialReconnectDelay <= 0 || c.Stream.MaxReconnectDelay < c.Stream.InitialReconnectDelay {
		return fmt.Errorf("invalid reconnect delays: initial %s, max %s",
			c.Stream.InitialReconnectDelay, c.Stream.MaxReconnectDelay)
	}
	if c.Stream.MaxBatch <= 0 {
		return fmt.Errorf("stream.max_batch must be positive")
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
