// Command server runs the folio API. main wires dependencies from the
// environment, composes the router, and manages the server lifecycle; all
// business logic lives under internal/.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"folio/internal/audit"
	audithandler "folio/internal/audit/handler"
	auditmemory "folio/internal/audit/store/memory"
	auditpostgres "folio/internal/audit/store/postgres"
	"folio/internal/auth"
	authhandler "folio/internal/auth/handler"
	authmemory "folio/internal/auth/store/memory"
	authpostgres "folio/internal/auth/store/postgres"
	"folio/internal/auth/throttle"
	"folio/internal/book"
	bookhandler "folio/internal/book/handler"
	bookmemory "folio/internal/book/store/memory"
	bookpostgres "folio/internal/book/store/postgres"
	"folio/internal/platform/config"
	"folio/internal/platform/database"
	"folio/internal/platform/httpserver"
	"folio/internal/platform/logger"
	"folio/internal/platform/metrics"
	"folio/internal/platform/redis"
	httptransport "folio/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewWith(registry)

	var (
		auditStore audit.Store
		userStore  auth.UserStore
		bookStore  book.Store
	)
	if db != nil {
		auditStore = auditpostgres.New(db)
		userStore = authpostgres.New(db)
		bookStore = bookpostgres.New(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		auditStore = auditmemory.NewInMemoryStore()
		userStore = authmemory.NewInMemoryStore()
		bookStore = bookmemory.NewInMemoryStore()
	}

	var limiter throttle.Limiter
	if redisClient != nil {
		limiter = throttle.NewRedisLimiter(redisClient.Client, cfg.LoginLimit, cfg.LoginWindow)
	} else {
		limiter = throttle.NewMemoryLimiter(cfg.LoginLimit, cfg.LoginWindow)
	}

	tokens := auth.NewTokenManager(cfg.JWTSigningKey)
	audits := audit.NewService(auditStore, audit.DefaultRegistry(), log, m)
	authSvc := auth.NewService(userStore, tokens, limiter, audits, log, m)
	bookSvc := book.NewService(bookStore, audits, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Registry: registry,
		Tokens:   tokens,
		Auth:     authhandler.New(authSvc, log, cfg.SeedEnabled),
		Books:    bookhandler.New(bookSvc, log),
		Audits:   audithandler.New(audits, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting folio server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
