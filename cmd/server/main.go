package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-assistant/internal/application"
	"github.com/eugenenazirov/packing-assistant/internal/config"
	"github.com/eugenenazirov/packing-assistant/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("packing-assistant", "Packing Assistant - generates travel packing lists that fit your luggage")
	overrides := registerFlags(kingpinApp)

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(overrides.build())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)

	if err := app.Close(); err != nil {
		logger.Warn("failed to close list store", zap.Error(err))
	}
}

// flagValues holds the raw flag values before they become config overrides.
// Empty strings and negative numbers mean the flag was not given.
type flagValues struct {
	configFile     *string
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
	logLevel       *string
	storage        *string
	dataDir        *string
	redisAddr      *string
	priorityScores *string
	weightFactor   *float64
}

func registerFlags(app *kingpin.Application) *flagValues {
	return &flagValues{
		configFile:     app.Flag("config", "Path to YAML configuration file").String(),
		port:           app.Flag("port", "HTTP port exposed by the service").String(),
		rateLimitRPS:   app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst: app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int(),
		logLevel:       app.Flag("log-level", "Log level (debug, info, warn, error)").String(),
		storage:        app.Flag("storage", "Saved-list backend").Enum(config.BackendMemory, config.BackendDatastore, config.BackendRedis),
		dataDir:        app.Flag("data-dir", "Directory for the datastore backend").String(),
		redisAddr:      app.Flag("redis-addr", "Redis address for the redis backend").String(),
		priorityScores: app.Flag("priority-scores", "Priority scores, e.g. essential=100,luxury=5").String(),
		weightFactor:   app.Flag("weight-factor", "Weight-to-volume factor used by the fitter").Default("-1").Float64(),
	}
}

func (f *flagValues) build() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *f.configFile,
	}

	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}
	if *f.storage != "" {
		overrides.StorageBackend = f.storage
	}
	if *f.dataDir != "" {
		overrides.DataDir = f.dataDir
	}
	if *f.redisAddr != "" {
		overrides.RedisAddr = f.redisAddr
	}
	if *f.priorityScores != "" {
		overrides.PriorityScoresStr = f.priorityScores
	}
	if *f.weightFactor >= 0 {
		overrides.WeightFactor = f.weightFactor
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
