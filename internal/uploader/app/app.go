package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandler "github.com/anthanhphan/go-image-upload/internal/uploader/adapter/inbound/http"
	"github.com/anthanhphan/go-image-upload/internal/uploader/adapter/outbound/disk"
	"github.com/anthanhphan/go-image-upload/internal/uploader/adapter/outbound/memory"
	"github.com/anthanhphan/go-image-upload/internal/uploader/adapter/outbound/objectstore"
	"github.com/anthanhphan/go-image-upload/internal/uploader/config"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	"github.com/anthanhphan/go-image-upload/internal/uploader/service"
	"github.com/anthanhphan/go-image-upload/pkg/idgen"
	"github.com/anthanhphan/go-image-upload/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg         *config.Config
	server      *httpHandler.Server
	redisClient *redis.Client
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	return NewWithConfig(cfg)
}

// NewWithConfig wires the application from an already loaded config.
func NewWithConfig(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	// 3. Stamp source for stored names
	var clock idgen.Clock = &idgen.SystemClock{}
	if cfg.Clock.RedisAddr != "" {
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Clock.RedisAddr,
			Password: cfg.Clock.RedisPassword,
			DB:       cfg.Clock.RedisDB,
		})
		clock = idgen.NewRedisClock(a.redisClient)
	}
	stamps := idgen.NewStamper(clock)

	// 4. Storage backend
	store, err := newStore(cfg)
	if err != nil {
		a.closeRedis()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 5. Service & HTTP Server
	svc := service.NewUploadService(cfg.Upload, store, stamps)
	a.server = httpHandler.NewServer(cfg, svc)

	return a, nil
}

func newStore(cfg *config.Config) (port.Store, error) {
	switch cfg.Storage.Backend {
	case "", config.BackendDisk:
		return disk.NewDiskAdapter(cfg.Upload.Dir)
	case config.BackendMemory:
		return memory.NewMemoryAdapter(), nil
	case config.BackendS3:
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "s3:" + cfg.Storage.S3.Bucket,
			FailureThreshold: cfg.Storage.Breaker.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.Storage.Breaker.OpenTimeoutMS) * time.Millisecond,
		})
		return objectstore.NewS3Adapter(objectstore.NewS3Client(cfg.Storage.S3), cfg.Storage.S3, breaker)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Server returns the HTTP server.
func (a *App) Server() *httpHandler.Server {
	return a.server
}

func (a *App) Run() error {
	logger.Infow("Image upload server starting",
		"addr", a.cfg.Server.Addr,
		"backend", a.cfg.Storage.Backend,
		"upload_dir", a.cfg.Upload.Dir)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Upload server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down upload server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		logger.Errorw("Upload server shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	a.closeRedis()

	return runErr
}

func (a *App) closeRedis() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		logger.Warnw("Redis close failed", "error", err.Error())
	}
}
