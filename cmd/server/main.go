package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/api"
	"github.com/krishgupta2521/FIC--sub000/internal/config"
	"github.com/krishgupta2521/FIC--sub000/internal/history"
	"github.com/krishgupta2521/FIC--sub000/internal/ledger"
	"github.com/krishgupta2521/FIC--sub000/internal/metrics"
	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/round"
	"github.com/krishgupta2521/FIC--sub000/internal/shock"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.Database.PostgresURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.Database.PostgresURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.Database.RedisURL != "" {
			opt, err := redis.ParseURL(cfg.Database.RedisURL)
			if err != nil {
				slog.Error("invalid redis url", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, time.Duration(cfg.Database.CacheTTLSec)*time.Second)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("postgres_url not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	if err := seedInstruments(context.Background(), st, cfg.Instruments); err != nil {
		slog.Error("market initialization failed", "err", err)
		os.Exit(1)
	}

	// --- Core components ---
	ldg := ledger.New(st, cfg.Game.StartingCash.Decimal)
	shocks := shock.New(st, shockTable(cfg), nil)
	recorder := history.NewRecorder(st)
	rounds := round.New()

	// --- WebSocket hub ---
	wsHub := api.NewWSHub()
	go wsHub.Run()
	rounds.OnFreeze = func(r int) {
		slog.Info("round timer expired", "round", r)
		wsHub.Broadcast(api.WSMessage{Type: "round_frozen", Round: r})
	}

	svc := api.NewService(st, ldg, shocks, recorder, rounds, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"fic-trading-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", svc.Routes)

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
	}

	go func() {
		slog.Info("trading engine listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down trading engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("trading engine stopped")
}

// seedInstruments creates the configured instruments that do not exist yet.
// Existing instruments keep their current (possibly shocked) prices.
func seedInstruments(ctx context.Context, st store.Store, seeds []config.InstrumentConfig) error {
	for _, seed := range seeds {
		_, err := st.GetInstrument(ctx, seed.Symbol)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		inst := &model.Instrument{
			Symbol:    seed.Symbol,
			Name:      seed.Name,
			Price:     seed.Price.Decimal,
			CreatedAt: time.Now().UTC(),
		}
		if err := st.CreateInstrument(ctx, inst); err != nil {
			return err
		}
		slog.Info("instrument seeded", "symbol", seed.Symbol, "price", seed.Price.String())
	}
	return nil
}

// shockTable merges configured magnitudes over the defaults.
func shockTable(cfg *config.Config) map[string]decimal.Decimal {
	table := shock.DefaultMagnitudes()
	for severity, magnitude := range cfg.Game.ShockMagnitudes {
		table[severity] = magnitude.Decimal
	}
	return table
}
