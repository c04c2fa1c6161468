package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/middlewares"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// api holds what the handlers need. store is set once before the
// readiness gate opens and never changes afterwards.
type api struct {
	store  *models.Store
	logger *logrus.Logger
}

func newRouter(a *api, cfg config.Config, ready *atomic.Bool) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = utils.MaxUploadSizeBytes
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.RequestLogger(a.logger))
	r.Use(middlewares.ReadinessMiddleware(ready))
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction()))
	r.Use(gin.Recovery())

	r.GET(middlewares.HealthzPath, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	registerRoutes(r, a)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.SetLogLevel(cfg.LogLevel)
	logger := config.GetLogger()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Listen first; app routes answer 503 until the store is ready.
	var ready atomic.Bool
	a := &api{logger: logger}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a, cfg, &ready),
		ReadHeaderTimeout: 10 * time.Second,
	}
	startCtx, serverErrCh := serveInBackground(sigCtx, srv.ListenAndServe)

	store, rdb, err := openStore(startCtx, cfg, logger)
	if err != nil {
		if cause := context.Cause(startCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			err = cause
		}
		logger.WithFields(logrus.Fields{"field": "startup"}).Error(err.Error())
		shutdown(srv, nil, rdb, logger)
		os.Exit(1)
	}
	a.store = store
	ready.Store(true)
	logger.WithFields(logrus.Fields{"port": cfg.Port}).Info("IN/OUT Management API is running")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}
	shutdown(srv, store, rdb, logger)
}

// serveInBackground runs serve in a goroutine. The returned context is
// cancelled, with the serve error as its cause, as soon as serve returns,
// so startup work stops retrying when the listener could not be opened.
func serveInBackground(parent context.Context, serve func() error) (context.Context, <-chan error) {
	ctx, cancel := context.WithCancelCause(parent)
	errCh := make(chan error, 1)
	go func() {
		err := serve()
		cancel(fmt.Errorf("http server stopped: %w", err))
		errCh <- err
	}()
	return ctx, errCh
}

// openStore connects every dependency, migrates and builds the store.
// Anything opened before a failure is closed again.
func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*models.Store, *redis.Client, error) {
	db, err := config.ConnectDatabaseWithRetry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	rdb, err := config.ConnectRedisWithRetry(ctx, cfg)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("running without redis: " + err.Error())
		rdb = nil
	}

	blobs, err := utils.NewBlobStorage(ctx, utils.StorageOptions{
		Provider:        cfg.StorageProvider,
		UploadDir:       cfg.UploadDir,
		Bucket:          cfg.GCSBucket,
		CredentialsJSON: cfg.GCSCredentialsJSON,
	})
	if err != nil {
		closeDB()
		return nil, rdb, err
	}

	store := models.NewStore(db,
		models.WithLocker(utils.NewKeyLocker(rdb)),
		models.WithCache(utils.NewCache(rdb)),
		models.WithBlobStorage(blobs),
		models.WithLogger(logger),
	)

	if cfg.SkipMigrations {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	} else if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, rdb, err
	}
	return store, rdb, nil
}

func shutdown(srv *http.Server, store *models.Store, rdb *redis.Client, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.WithFields(logrus.Fields{"field": "store"}).Error("close store: " + err.Error())
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
