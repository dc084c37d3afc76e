package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apirest "github.com/anonto42/React-native-social-media-app/server/api/rest"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/content"
	dbadapter "github.com/anonto42/React-native-social-media-app/server/db"
	"github.com/anonto42/React-native-social-media-app/server/messaging"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/anonto42/React-native-social-media-app/server/profile"
	"github.com/anonto42/React-native-social-media-app/server/scheduler"
	"github.com/anonto42/React-native-social-media-app/server/social"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("security.jwt_secret is required")
	}

	// ---- Sentry ----
	if cfg.Server.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Server.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Server.Env,
		}); err != nil {
			logger.Error("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}
	defer c.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Services ----
	profiles := profile.NewService(db, logger)
	store := social.NewStore(db, c, auditSvc, logger)
	query := social.NewQuery(db, c, cfg.Social, logger)
	posts := content.NewService(db, query, cfg.Content, logger)
	ledger := content.NewLedger(db, content.NewCounter(db), cfg.Content, auditSvc, logger)
	reconciler := content.NewReconciler(db, auditSvc, logger)
	messages := messaging.NewService(db, cfg.Content, logger)
	if !cfg.Content.TransactionalLike {
		logger.Warn("like counter updates are not transactional; drift is repaired by reconciliation")
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	reconcile := func(ctx context.Context) error {
		_, err := reconciler.ReconcileAll(ctx)
		return err
	}
	sched.AddDelay("reconcile_like_counters_startup", 30*time.Second, reconcile)
	if cfg.Content.ReconcileInterval > 0 {
		sched.AddTicker("reconcile_like_counters", cfg.Content.ReconcileInterval, reconcile)
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger), mw.Sentry())
	if cfg.Security.RateLimitRPS > 0 {
		// Per-IP ceiling; /api adds a tighter per-profile limit.
		r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS*2), cfg.Security.RateLimitBurst*2, mw.ByClientIP))
	}

	apirest.RegisterRoutes(r, apirest.Deps{
		Config:     cfg,
		Cache:      c,
		Profiles:   profiles,
		Store:      store,
		Query:      query,
		Content:    posts,
		Ledger:     ledger,
		Reconciler: reconciler,
		Messages:   messages,
		Scheduler:  sched,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	// ---- Graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(ctx)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
