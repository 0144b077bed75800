package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/config"
	"github.com/spec-kit/support-tickets/internal/messaging"
	"github.com/spec-kit/support-tickets/internal/observability"
	"github.com/spec-kit/support-tickets/internal/persistence"
	"github.com/spec-kit/support-tickets/internal/repository"
	"github.com/spec-kit/support-tickets/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	publisher, err := messaging.NewPublisher(cfg.Rabbit, logger)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer publisher.Close()

	ticketRepo := repository.NewCachedTicketRepository(
		repository.NewTicketRepository(pg.PoolHandle()),
		redis.Client,
		cfg.Redis.TicketTTL(),
		logger,
	)

	ticketService := service.NewTicketService(service.Dependencies{
		TicketRepo: ticketRepo,
		Publisher:  publisher,
		Logger:     logger,
	})

	adapter := messaging.NewEventAdapter(ticketService, logger)
	consumer := messaging.NewConsumer(cfg.Rabbit, cfg.Consumer, adapter, logger, metrics)

	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("consumer failed", zap.Error(err))
	}
}
