package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/bets"
	bhttp "github.com/radieske/sim-betting-service/internal/betting-service/http"
	"github.com/radieske/sim-betting-service/internal/betting-service/ledger"
	"github.com/radieske/sim-betting-service/internal/betting-service/odds"
	kpub "github.com/radieske/sim-betting-service/internal/betting-service/producer"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/internal/betting-service/ws"
	sharedcache "github.com/radieske/sim-betting-service/internal/shared/cache"
	"github.com/radieske/sim-betting-service/internal/shared/config"
	"github.com/radieske/sim-betting-service/internal/shared/db"
	"github.com/radieske/sim-betting-service/internal/shared/kafka"
	"github.com/radieske/sim-betting-service/internal/shared/logger"
	"github.com/radieske/sim-betting-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "betting-service"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opening, err := decimal.NewFromString(cfg.StartingBalance)
	if err != nil || opening.IsNegative() {
		log.Fatal("invalid STARTING_BALANCE", zap.String("value", cfg.StartingBalance))
	}

	checks := map[string]metrics.HealthFunc{}

	// Persistência: Postgres (com migrations) ou memória para rodar sem banco
	var store repo.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		store = repo.NewMemory()
	case "postgres":
		if cfg.MigrateOnStart {
			version, err := db.Migrate(cfg.PostgresDSN)
			if err != nil {
				log.Fatal("migrate", zap.Error(err))
			}
			log.Info("schema up to date", zap.Uint("version", version))
		}
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()
		checks["postgres"] = pg.PingContext
		store = repo.NewPostgres(pg)
	default:
		log.Fatal("unknown STORE_DRIVER", zap.String("driver", cfg.StoreDriver))
	}

	// Redis é opcional: sem REDIS_ADDR não há cache de odds nem feed websocket
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = sharedcache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_ADDR empty; odds cache and websocket feed disabled")
	}

	// Writer sem tópico fixo: cada evento informa o seu
	writer := kafka.NewWriter(cfg.KafkaBrokers, "")
	defer writer.Close()
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetPlaced, cfg.TopicBetSettled)

	// Odds: cliente HTTP -> cache Redis -> timeout por chamada
	oddsClient := odds.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsAPIRegions, cfg.OddsTimeout)
	oddsCache := odds.NewCache(oddsClient, redisClient, cfg.OddsCacheTTL, log)
	oddsSource := odds.NewSource(oddsCache, cfg.OddsTimeout)

	// Métricas Prometheus
	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bets_placed_total", Help: "apostas registradas"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_settled_total", Help: "apostas liquidadas por resultado"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(placed, settled, errorsBy)

	led := ledger.New(store.Accounts(), opening)
	manager := bets.NewManager(log, store, led, oddsSource,
		bets.WithPublisher(publ),
		bets.WithHooks(bets.Hooks{
			OnPlaced:  func() { placed.Inc() },
			OnSettled: func(status string) { settled.WithLabelValues(status).Inc() },
			OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
		}),
	)

	// Feed websocket: bet-notifier-worker publica no Redis, o hub entrega ao usuário
	var hub *ws.Hub
	if redisClient != nil {
		hub = ws.NewHub(log, func(r *http.Request) bool { return true })
		ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)
	}

	api := bhttp.NewServer(log, manager, led, oddsCache, hub)
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, checks)

	go func() {
		log.Info("betting-service listening",
			zap.String("addr", apiSrv.Addr),
			zap.String("store", cfg.StoreDriver),
		)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
}
