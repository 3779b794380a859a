package application

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-assistant/internal/api"
	"github.com/eugenenazirov/packing-assistant/internal/config"
	"github.com/eugenenazirov/packing-assistant/internal/datastore"
	"github.com/eugenenazirov/packing-assistant/internal/storage"
)

//go:embed web
var webAssets embed.FS

const redisPingTimeout = 3 * time.Second

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	lists   storage.ListStore
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
	closers []io.Closer
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetTuning(cfg.Tuning); err != nil {
		return nil, fmt.Errorf("failed to apply initial tuning: %w", err)
	}

	lists, closers, err := openListStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open list store: %w", err)
	}

	handler := api.NewHandler(store, lists)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		storage: store,
		lists:   lists,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, rootHandler),
		closers: closers,
	}, nil
}

// openListStore returns the saved-list backend selected by the configuration
// together with the resources to release on shutdown.
func openListStore(cfg config.Config, logger *zap.Logger) (storage.ListStore, []io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendDatastore:
		ds, err := datastore.Open(cfg.DataDir, datastore.WithLogger(logger.Named("datastore")))
		if err != nil {
			return nil, nil, err
		}
		stats := ds.Stats()
		logger.Info("datastore opened",
			zap.String("dir", cfg.DataDir),
			zap.Int("keys", stats.TotalKeys),
			zap.Int("corrupt_entries", stats.CorruptEntries),
		)
		return storage.NewDatastoreListStore(ds), []io.Closer{ds}, nil

	case config.BackendRedis:
		rs := storage.NewRedisListStore(storage.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("redis list store connected", zap.String("addr", cfg.Redis.Addr))
		return rs, []io.Closer{rs}, nil

	default:
		return storage.NewMemoryListStore(), nil, nil
	}
}

// BuildRootHandler constructs the root HTTP handler that serves the embedded web UI and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticFS, err := fs.Sub(webAssets, "web/static")
	if err != nil {
		return nil, err
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.Handle("/api/", apiHandler)

	index, err := webAssets.ReadFile("web/index.html")
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the saved-list backend. Call it after the server has shut down.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
