package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/bootstrap"
	"github.com/SREENATHREDDY1234/music-freak/internal/email"
	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
	"github.com/SREENATHREDDY1234/music-freak/internal/logging"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/booking"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
)

func main() {
	cfgPath := pflag.String("config", "", "path to config.yaml (defaults to $CONFIG_PATH, then ./config.yaml)")
	auditOnce := pflag.Bool("audit-once", false, "run a single ledger audit and exit")
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
	logger := logging.New(cfg).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	// The audit must take the same per-event lock as the API instances.
	infra := bootstrap.Infra{Repos: repos}
	if redisCache := bootstrap.OpenRedis(ctx, cfg, logger); redisCache != nil {
		defer redisCache.Close()
		infra.Redis = redisCache
	}
	bookingService := bootstrap.NewContainer(cfg, logger, infra).Bookings

	if *auditOnce {
		runAudit(ctx, bookingService, logger)
		return
	}

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.BookingTopic
	}
	if len(cfg.Kafka.Brokers) > 0 && topic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, logger)
		defer consumer.Close()

		sender := email.NewSender(logger)
		go func() {
			if err := consumer.Consume(ctx, notify(sender, logger)); err != nil {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("kafka not configured, booking notifications disabled")
	}

	interval := time.Duration(cfg.Worker.AuditIntervalMinutes) * time.Minute
	auditTicker := time.NewTicker(interval)
	defer auditTicker.Stop()

	logger.Info("worker started", "audit_interval", interval)
	for {
		select {
		case <-auditTicker.C:
			runAudit(ctx, bookingService, logger)
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}

func notify(sender *email.Sender, logger *slog.Logger) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		event, err := kafka.DecodeBookingEvent(msg.Value)
		if err != nil {
			logger.Warn("skipping undecodable booking event", "offset", msg.Offset, "error", err)
			return nil
		}
		return sender.Send(ctx, event)
	}
}

func runAudit(ctx context.Context, svc booking.BookingUseCase, logger *slog.Logger) {
	start := time.Now()
	discrepancies, err := svc.AuditLedger(ctx)
	if err != nil {
		logger.Error("ledger audit failed", "error", err)
		return
	}
	if len(discrepancies) > 0 {
		logger.Error("ledger audit found discrepancies", "count", len(discrepancies), "duration", time.Since(start))
		return
	}
	logger.Info("ledger audit clean", "duration", time.Since(start))
}
