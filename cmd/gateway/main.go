// Package main runs the API gateway: an HTTP front door whose backends are
// reachable only through the message broker.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/autozen/api-gateway/internal/adapter"
	"github.com/autozen/api-gateway/internal/broker"
	"github.com/autozen/api-gateway/internal/config"
	"github.com/autozen/api-gateway/internal/httpapi"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/metrics"
	"github.com/autozen/api-gateway/internal/service"
	"github.com/autozen/api-gateway/internal/token"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env for local development. Missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("gateway", "info", "json").WithError(err).Fatal("load configuration")
	}

	logger := logging.New("gateway", cfg.Log.Level, cfg.Log.Format)
	logger.WithFields(map[string]interface{}{
		"addr":       cfg.Server.Addr,
		"broker_url": cfg.Broker.URL,
	}).Info("starting gateway")

	m := metrics.New("gateway")

	validator, err := token.NewValidator(cfg.JWT.PublicKey, cfg.JWT.Algorithm, cfg.JWT.Leeway())
	if err != nil {
		logger.WithError(err).Fatal("configure token validator")
	}

	authConn := broker.NewManager("auth", cfg.Broker.URL, cfg.Broker.Auth.Exchange, cfg.Broker.ConnectTimeout(), logger)
	paymentConn := broker.NewManager("payment", cfg.Broker.URL, cfg.Broker.Payment.Exchange, cfg.Broker.ConnectTimeout(), logger)
	defer authConn.Close()
	defer paymentConn.Close()

	authRPC := broker.NewClient(authConn, cfg.Broker.RPCTimeout(), logger, m)
	paymentRPC := broker.NewClient(paymentConn, cfg.Broker.RPCTimeout(), logger, m)

	authBackend := adapter.NewAuthAdapter(authRPC, cfg.Broker.Auth.RoutingKey, logger)
	paymentBackend := adapter.NewPaymentAdapter(paymentRPC, validator, cfg.Broker.Payment.RoutingKey, logger)

	authSvc := service.NewAuthService(authBackend, validator, logger)
	paymentSvc := service.NewPaymentService(paymentBackend, logger)

	api := httpapi.NewServer(authSvc, paymentSvc, logger, m, httpapi.Options{
		RateLimit: cfg.Server.RateLimitPerSec,
		RateBurst: cfg.Server.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{"addr": cfg.Server.Addr}).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.WithError(err).Error("http server failed")
	case sig := <-stop:
		logger.WithFields(map[string]interface{}{"signal": sig.String()}).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("gateway stopped")
}
