package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memorial-registry/internal/app"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/config"
	"memorial-registry/internal/migrations"
	"memorial-registry/internal/observability/metrics"
	"memorial-registry/internal/ratelimit"
	"memorial-registry/pkg/logger"
	"memorial-registry/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	var db *sql.DB
	if cfg.Storage.Driver == config.StorageDriverPostgres {
		db, err = utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		if cfg.Storage.MigrateOnStart {
			if err := migrations.Up(rootCtx, db); err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
		}
	}

	services, err := app.New(cfg, db)
	if err != nil {
		log.Error("service init failed", "err", err)
		os.Exit(1)
	}

	var limiter ratelimit.Limiter = ratelimit.NewLocal(cfg.Submit.RateLimit, cfg.Submit.RateWindow)
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisWindow(rdb, "", cfg.Submit.RateLimit, cfg.Submit.RateWindow)
	}

	metrics.MustRegister("registry-api")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware())

	registerRoutes(r, routeDeps{
		services: services,
		auth:     authManager,
		limiter:  limiter,
		db:       db,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           http.TimeoutHandler(r, 25*time.Second, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"storage", cfg.Storage.Driver,
			"search_mode", cfg.Search.Mode,
			"redis", cfg.RedisEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
