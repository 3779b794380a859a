package application

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/packing-assistant/internal/config"
	"github.com/eugenenazirov/packing-assistant/internal/packing"
	"github.com/eugenenazirov/packing-assistant/internal/storage"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.Tuning.PriorityScores[packing.PriorityLuxury] = 3
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	tuning, err := app.storage.GetTuning()
	if err != nil {
		t.Fatalf("GetTuning returned error: %v", err)
	}
	if tuning.PriorityScores[packing.PriorityLuxury] != 3 {
		t.Fatalf("expected configured tuning, got %+v", tuning)
	}
	if _, ok := app.lists.(*storage.MemoryListStore); !ok {
		t.Fatalf("expected memory list store, got %T", app.lists)
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewWithDatastoreBackend(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.StorageBackend = config.BackendDatastore
	cfg.DataDir = t.TempDir()

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := app.lists.(*storage.DatastoreListStore); !ok {
		t.Fatalf("expected datastore list store, got %T", app.lists)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNewWithRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseTestConfig(":0")
	cfg.StorageBackend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Addr: mr.Addr(), Prefix: "test:"}

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer app.Close()

	if _, ok := app.lists.(*storage.RedisListStore); !ok {
		t.Fatalf("expected redis list store, got %T", app.lists)
	}
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cfg := baseTestConfig(":0")
	cfg.StorageBackend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Addr: addr}

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestNewReturnsErrorForInvalidTuning(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Tuning = packing.Tuning{}

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid tuning")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestBuildRootHandlerServesEmbeddedUI(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	root, err := BuildRootHandler(api)
	if err != nil {
		t.Fatalf("BuildRootHandler returned error: %v", err)
	}

	testCases := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "Packing Assistant"},
		{"/static/app.js", http.StatusOK, "/api/packing-list"},
		{"/api/health", http.StatusTeapot, ""},
		{"/missing", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		rec := httptest.NewRecorder()
		root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.path, tc.status, rec.Code)
		}
		if tc.contains != "" && !strings.Contains(rec.Body.String(), tc.contains) {
			t.Fatalf("%s: expected body to contain %q", tc.path, tc.contains)
		}
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
		LogLevel:             "info",
		StorageBackend:       config.BackendMemory,
		Tuning:               packing.DefaultTuning(),
	}
}
