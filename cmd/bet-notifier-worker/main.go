package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/bet-notifier/consumer"
	"github.com/radieske/sim-betting-service/internal/bet-notifier/pubsub"
	sharedcache "github.com/radieske/sim-betting-service/internal/shared/cache"
	"github.com/radieske/sim-betting-service/internal/shared/config"
	"github.com/radieske/sim-betting-service/internal/shared/kafka"
	"github.com/radieske/sim-betting-service/internal/shared/logger"
	"github.com/radieske/sim-betting-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "bet-notifier-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group bet-notifier nos dois tópicos de aposta
	reader := kafka.NewGroupReader(cfg.KafkaBrokers, "bet-notifier", cfg.TopicBetPlaced, cfg.TopicBetSettled)
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_notifier_messages_consumed_total", Help: "mensagens consumidas"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_notifier_broadcasts_total", Help: "mensagens publicadas no Redis"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_notifier_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, published, errorsBy)

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Broadcaster:  pubsub.NewRedisBroadcaster(redisClient),
		Channel:      cfg.RedisPubSubChannel,
		TopicPlaced:  cfg.TopicBetPlaced,
		TopicSettled: cfg.TopicBetSettled,
		OnConsumed:   func() { consumed.Inc() },
		OnPublished:  func() { published.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, map[string]metrics.HealthFunc{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})

	log.Info("bet-notifier-worker started",
		zap.String("topics", cfg.TopicBetPlaced+","+cfg.TopicBetSettled),
		zap.String("channel", cfg.RedisPubSubChannel),
	)
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("bet-notifier-worker stopped")
}
