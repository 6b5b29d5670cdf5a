package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"libres/config"
	"libres/infras/kafka"
	"libres/infras/otel"
	"libres/internal/consumers/reservation"
	"libres/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if !cfg.Kafka.Enable {
		log.Fatal().Msg("Kafka is disabled, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)
	consumer := reservation.New(otel.New(cfg))

	log.Info().Str("topic", cfg.Kafka.Topic.Reservation).Msg("Starting reservation notifier.")

	if err := client.Consume(ctx, cfg.Kafka.Topic.Reservation, consumer.Handle); err != nil {
		log.Fatal().Err(err).Msg("Reservation notifier failed.")
	}

	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client.")
	}

	log.Info().Msg("Reservation notifier stopped.")
}
