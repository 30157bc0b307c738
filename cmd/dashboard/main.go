package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/api"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/dashboard"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/insights"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/publisher"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/stream"
	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
	"github.com/shubham-shewale/stock-dashboard/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Preferences
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	prefs := repository.NewRedisStore(rdb)
	defer prefs.Close()

	watchlist, err := repository.LoadWatchlist(ctx, prefs)
	if err != nil {
		logger.Fatal("Failed to load watchlist", zap.Error(err))
	}

	// 2. Quote source and stream session
	clock := generator.RealClock{}
	rnd := generator.NewRealRand(time.Now().UnixNano())
	baselines := generator.NewBaselines()
	gen := generator.NewQuoteGenerator(catalogue.Symbols(), rnd, baselines)
	source := generator.NewSource(gen, rnd, clock, cfg.Dashboard.FetchLatency)

	session := stream.NewSession(cfg.Stream.URL, &stream.WebsocketDialer{Dialer: websocket.DefaultDialer}, baselines,
		stream.WithLogger(logger.Named("stream")),
		stream.WithClock(clock),
		stream.WithRand(rnd),
		stream.WithTickInterval(cfg.Stream.TickInterval),
		stream.WithReconnectSettings(cfg.Stream.InitialReconnectDelay, cfg.Stream.MaxReconnectDelay),
		stream.WithMaxBatch(cfg.Stream.MaxBatch),
		stream.WithVolatility(cfg.Stream.Volatility),
	)

	// 3. AI insights, degraded to placeholders when unavailable
	var ai insights.Service = insights.Disabled{}
	if cfg.Gemini.APIKey != "" {
		g, err := insights.NewGenAIGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Error("Gemini unavailable, AI insights disabled", zap.Error(err))
		} else {
			ai = insights.NewGemini(g)
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI insights disabled")
	}

	opts := []dashboard.Option{
		dashboard.WithClock(clock),
		dashboard.WithTickAlerts(cfg.Alerts.EvaluateOnTick),
		dashboard.WithMaxNotifications(cfg.Alerts.MaxNotifications),
	}

	// 4. Kafka republishing
	if cfg.Kafka.Enabled {
		tc := publisher.NewTopicCreator(logger, &publisher.RealKafkaDialer{Dialer: kafka.DefaultDialer}, clock)
		if err := tc.Create(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("Topic not confirmed, publishing anyway", zap.Error(err))
		}

		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
		}
		pub := publisher.NewTickPublisher(logger.Named("publisher"), writer, clock)
		defer pub.Close()
		opts = append(opts, dashboard.WithPublisher(pub))
	}

	dash := dashboard.New(logger, source, session, insights.NewDegraded(ai, logger.Named("insights")), watchlist, opts...)
	defer dash.Close()

	if err := dash.Load(ctx); err != nil {
		// stays in the error state until POST /api/reload
		logger.Error("Initial load failed", zap.Error(err))
	}

	// 5. HTTP API
	srv := &http.Server{
		Addr:              cfg.Dashboard.Addr,
		Handler:           api.NewServer(logger.Named("api"), dash, prefs).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Dashboard Started", zap.String("addr", cfg.Dashboard.Addr), zap.String("stream", cfg.Stream.URL))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
	logger.Info("Shutdown Complete")
}
