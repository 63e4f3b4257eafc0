package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/bootstrap"
	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
	"github.com/SREENATHREDDY1234/music-freak/internal/logging"
	"github.com/spf13/pflag"
)

func main() {
	cfgPath := pflag.String("config", "", "path to config.yaml (defaults to $CONFIG_PATH, then ./config.yaml)")
	pflag.Parse()

	path := *cfgPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg)
	logger.Info("starting music-freak api", "environment", cfg.Environment, "storage", cfg.Storage.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	infra := bootstrap.Infra{Repos: repos}
	if redisCache := bootstrap.OpenRedis(ctx, cfg, logger); redisCache != nil {
		defer redisCache.Close()
		infra.Redis = redisCache
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable at startup, booking events may be dropped", "error", err)
		}
		infra.Producer = producer
	}

	container := bootstrap.NewContainer(cfg, logger, infra)

	if err := bootstrap.Run(ctx, cfg, container); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
