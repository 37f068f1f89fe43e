package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/tidytask/tidytask/internal/config"
	"github.com/tidytask/tidytask/internal/folders"
	"github.com/tidytask/tidytask/internal/handlers"
	"github.com/tidytask/tidytask/internal/logger"
	"github.com/tidytask/tidytask/internal/middleware"
	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
	"github.com/tidytask/tidytask/internal/storage"
	"github.com/tidytask/tidytask/internal/store"
	"github.com/tidytask/tidytask/internal/telemetry"
	"github.com/tidytask/tidytask/internal/window"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewProductionLogger(cfg.DebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", cfg.DebugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("data_path", cfg.DataPath),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "tidytask", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	snap, err := storage.Open(cfg.DataPath)
	if err != nil {
		zapLogger.Fatal("failed_to_open_snapshot_database", zap.Error(err))
	}
	defer func() {
		if err := snap.Close(); err != nil {
			zapLogger.Warn("failed_to_close_snapshot_database", zap.Error(err))
		}
	}()
	zapLogger.Info("snapshot_database_opened")

	svc, err := buildCore(snap, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_collections", zap.Error(err))
	}

	win := window.DefaultConfig()
	if cfg.WindowItemHeight > 0 {
		win.ItemHeight = cfg.WindowItemHeight
	}
	if cfg.WindowBuffer > 0 {
		win.Buffer = cfg.WindowBuffer
	}
	if cfg.WindowThreshold > 0 {
		win.Threshold = cfg.WindowThreshold
	}

	todoHandler := handlers.NewTodoHandler(svc, zapLogger, win)
	folderHandler := handlers.NewFolderHandler(svc, zapLogger)
	statsHandler := handlers.NewStatsHandler(svc)
	healthChecker := handlers.NewHealthChecker(snap)

	r := mux.NewRouter()

	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		r.Use(otelmux.Middleware("tidytask"))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Recover(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	todoHandler.RegisterRoutes(apiRouter.PathPrefix("/todos").Subrouter())
	folderHandler.RegisterRoutes(apiRouter.PathPrefix("/folders").Subrouter())
	statsHandler.RegisterRoutes(apiRouter.PathPrefix("/stats").Subrouter())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}).Handler(r)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// buildCore loads both collections from the snapshot store, ensures the
// root folder exists and wires the service facade
func buildCore(snap store.Snapshotter, zapLogger *zap.Logger) (*tasks.Service, error) {
	todoCol, err := store.NewCollection[*models.Todo]("todos", snap,
		store.WithLogger[*models.Todo](zapLogger))
	if err != nil {
		return nil, err
	}
	folderCol, err := store.NewCollection[*models.Folder]("folders", snap,
		store.WithLogger[*models.Folder](zapLogger))
	if err != nil {
		return nil, err
	}

	folderMgr := folders.NewManager(folderCol, todoCol, zapLogger)
	if err := folderMgr.EnsureRoot(); err != nil {
		return nil, err
	}

	return tasks.NewService(todoCol, folderMgr, zapLogger), nil
}

func allowedOrigins(raw string) []string {
	origins := []string{"http://localhost:3000"}
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		exists := false
		for _, existing := range origins {
			if existing == origin {
				exists = true
				break
			}
		}
		if !exists {
			origins = append(origins, origin)
		}
	}
	return origins
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
