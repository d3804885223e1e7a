package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	oddssim "github.com/radieske/sim-betting-service/internal/odds-simulator"
	"github.com/radieske/sim-betting-service/internal/shared/config"
	"github.com/radieske/sim-betting-service/internal/shared/logger"
	"github.com/radieske/sim-betting-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "odds-simulator"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddssim_requests_total",
		Help: "Requisições atendidas por rota",
	}, []string{"route"})
	reprices := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oddssim_reprices_total",
		Help: "Rodadas de atualização de preços",
	})
	prometheus.MustRegister(requests, reprices)

	seed := uint64(time.Now().UnixNano())
	catalog := oddssim.NewCatalog(rand.New(rand.NewPCG(seed, seed>>1)), time.Now())

	// Sorteia novos preços a cada 30 segundos
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				catalog.Reprice(now)
				reprices.Inc()
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           oddssim.NewServer(log, catalog, cfg.OddsSimAPIKey, requests).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, nil)

	go func() {
		log.Info("odds simulator running",
			zap.String("addr", srv.Addr),
			zap.String("paths", "/v4/sports,/v4/sports/{sport}/odds,/v4/sports/{sport}/events/{id}/odds,/v4/sports/{sport}/scores"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
