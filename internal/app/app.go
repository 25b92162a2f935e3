package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/jukebox/internal/controller"
	"github.com/sharetube/jukebox/internal/hub"
	"github.com/sharetube/jukebox/internal/repository/catalog"
	"github.com/sharetube/jukebox/internal/repository/room/redis"
	"github.com/sharetube/jukebox/internal/service/room"
	"github.com/sharetube/jukebox/pkg/ctxlogger"
	"github.com/sharetube/jukebox/pkg/events"
	"github.com/sharetube/jukebox/pkg/gormclient"
	"github.com/sharetube/jukebox/pkg/redisclient"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
)

const shutdownTimeout = 30 * time.Second

type AppConfig struct {
	Secret            string        `json:"-"`
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	LogLevel          string        `json:"log_level"`
	PlaylistLimit     int           `json:"playlist_limit"`
	RoomTTL           time.Duration `json:"room_ttl"`
	MetadataTimeout   time.Duration `json:"metadata_timeout"`
	MetadataCacheSize int           `json:"metadata_cache_size"`
	RedisHost         string        `json:"redis_host"`
	RedisPort         int           `json:"redis_port"`
	RedisPassword     string        `json:"-"`
	RedisMaxRetries   int           `json:"redis_max_retries"`
	DbDriver          string        `json:"db_driver"`
	DbDSN             string        `json:"-"`
	KafkaBrokers      []string      `json:"kafka_brokers"`
	KafkaTopic        string        `json:"kafka_topic"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return errors.New("secret must not be empty")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d is out of range", cfg.Port)
	}
	if cfg.PlaylistLimit < 1 {
		return errors.New("playlist limit must be greater than 0")
	}
	if cfg.RoomTTL <= 0 {
		return errors.New("room ttl must be positive")
	}
	if cfg.MetadataTimeout <= 0 {
		return errors.New("metadata timeout must be positive")
	}
	if cfg.MetadataCacheSize < 1 {
		return errors.New("metadata cache size must be greater than 0")
	}
	if cfg.RedisMaxRetries < 0 {
		return errors.New("redis max retries must not be negative")
	}
	if cfg.DbDriver != gormclient.DriverSQLite && cfg.DbDriver != gormclient.DriverMySQL {
		return fmt.Errorf("unknown db driver %q", cfg.DbDriver)
	}
	if cfg.DbDSN == "" {
		return errors.New("db dsn must not be empty")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return errors.New("kafka topic must be set when brokers are configured")
	}

	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

func newPublisher(cfg *AppConfig) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}
	}

	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:       cfg.RedisHost,
		Port:       cfg.RedisPort,
		Password:   cfg.RedisPassword,
		MaxRetries: cfg.RedisMaxRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	db, err := gormclient.NewGormClient(&gormclient.Config{
		Driver: cfg.DbDriver,
		DSN:    cfg.DbDSN,
		Models: catalog.Models(),
	})
	if err != nil {
		return fmt.Errorf("failed to create gorm client: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}()

	roomService, err := room.NewService(
		redis.NewRepo(rc, cfg.RoomTTL, logger),
		catalog.NewRepo(db, logger),
		ytvideodata.NewClient(),
		publisher,
		&room.Config{
			Secret:            cfg.Secret,
			PlaylistLimit:     cfg.PlaylistLimit,
			MetadataTimeout:   cfg.MetadataTimeout,
			MetadataCacheSize: cfg.MetadataCacheSize,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create room service: %w", err)
	}

	controller := controller.NewController(roomService, hub.New(0, logger), logger)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           controller.GetMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(context.WithoutCancel(ctx))
	defer serverStopCtx()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
		case <-serverCtx.Done():
			return
		}

		shutdownCtx, cancel := context.WithTimeout(serverCtx, shutdownTimeout)
		defer cancel()

		logger.InfoContext(shutdownCtx, "shutting down server")
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
