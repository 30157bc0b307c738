package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
	"github.com/shubham-shewale/stock-dashboard/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.App.Port)
	assert.Equal(t, ":8080", cfg.Dashboard.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "market_ticks", cfg.Kafka.Topic)
	assert.Equal(t, 4, cfg.Processor.NumWorkers)
	assert.Equal(t, catalogue.Symbols(), cfg.Gateway.ValidTickers)

	assert.Equal(t, 1500*time.Millisecond, cfg.Stream.TickInterval)
	assert.Equal(t, time.Second, cfg.Stream.InitialReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.Stream.MaxReconnectDelay)
	assert.Equal(t, 8, cfg.Stream.MaxBatch)
	assert.InDelta(t, 0.02, cfg.Stream.Volatility, 1e-12)

	assert.False(t, cfg.Alerts.EvaluateOnTick)
	assert.Equal(t, 20, cfg.Alerts.MaxNotifications)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_ADDR", ":9999")
	t.Setenv("STREAM_TICK_INTERVAL", "250ms")
	t.Setenv("STREAM_URL", "ws://gateway:8081/ws")
	t.Setenv("ALERTS_EVALUATE_ON_TICK", "true")
	t.Setenv("PROCESSOR_NUM_WORKERS", "8")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Dashboard.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.TickInterval)
	assert.Equal(t, "ws://gateway:8081/ws", cfg.Stream.URL)
	assert.True(t, cfg.Alerts.EvaluateOnTick)
	assert.Equal(t, 8, cfg.Processor.NumWorkers)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero workers", map[string]string{"PROCESSOR_NUM_WORKERS": "0"}},
		{"zero tick interval", map[string]string{"STREAM_TICK_INTERVAL": "0s"}},
		{"max delay below initial", map[string]string{
			"STREAM_INITIAL_RECONNECT_DELAY": "10s",
			"STREAM_MAX_RECONNECT_DELAY":     "1s",
		}},
		{"zero batch", map[string]string{"STREAM_MAX_BATCH": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidate_KafkaBrokersOnlyRequiredWhenEnabled(t *testing.T) {
	cfg := config.Config{
		Kafka:     config.KafkaConfig{Enabled: false},
		Processor: config.ProcessorConfig{NumWorkers: 1},
		Stream: config.StreamConfig{
			TickInterval:          time.Second,
			InitialReconnectDelay: time.Second,
			MaxReconnectDelay:     time.Second,
			MaxBatch:              1,
		},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(config.LoggerConfig{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = config.NewLogger(config.LoggerConfig{Level: "loud", Encoding: "json"})
	assert.Error(t, err)
}
