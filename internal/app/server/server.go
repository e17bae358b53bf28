package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrleave/internal/domain/audit"
	"hrleave/internal/domain/auth"
	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/notifications"
	"hrleave/internal/domain/reports"
	"hrleave/internal/platform/config"
	"hrleave/internal/platform/db"
	"hrleave/internal/platform/email"
	"hrleave/internal/platform/metrics"
	authhandler "hrleave/internal/transport/http/handlers/auth"
	leavehandler "hrleave/internal/transport/http/handlers/leave"
	reportshandler "hrleave/internal/transport/http/handlers/reports"
	"hrleave/internal/transport/http/middleware"
)

// App owns the wired dependency graph: database pool, services, router and
// the notification dispatcher.
type App struct {
	Config   config.Config
	Pool     *pgxpool.Pool
	Router   chi.Router
	Notifier *notifications.Service

	cancel context.CancelFunc
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	notifier := notifications.New(email.New(cfg), cfg.EmailFrom)
	dispatchCtx, cancel := context.WithCancel(context.Background())
	notifier.Start(dispatchCtx)

	leaveService := leave.NewService(leave.NewStore(pool))
	authStore := auth.NewStore(pool)
	auditor := audit.New(pool)
	reportService := reports.New(pool, leaveService)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(20, time.Minute)).
			Mount("/auth", authhandler.New(authStore, cfg.JWTSecret, cfg.TokenTTL).Routes())
		r.Mount("/leave", leavehandler.New(leaveService, authStore, auditor, notifier).Routes())
		r.Mount("/reports", reportshandler.New(reportService).Routes())
	})

	return &App{
		Config:   cfg,
		Pool:     pool,
		Router:   router,
		Notifier: notifier,
		cancel:   cancel,
	}, nil
}

// Run blocks serving HTTP until the listener fails.
func (a *App) Run() error {
	log.Printf("leave server listening on %s", a.Config.Addr)
	return http.ListenAndServe(a.Config.Addr, a.Router)
}

func (a *App) Close() {
	a.cancel()
	a.Pool.Close()
}
