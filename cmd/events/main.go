// Command events consumes order.paid and keeps crowdfunding progress current.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/imrishuroy/go-storefront/internal/config"
	"github.com/imrishuroy/go-storefront/internal/crowdfunding"
	"github.com/imrishuroy/go-storefront/internal/events"
	"github.com/imrishuroy/go-storefront/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.KafkaEnabled() {
		log.Fatalf("KAFKA_BROKERS is required")
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("the events consumer needs STORE_DRIVER=%s", config.DriverPostgres)
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer pool.Close()

	tracker := crowdfunding.NewTracker(postgres.New(pool))

	r := events.NewReader(cfg.KafkaBrokers, cfg.KafkaEventsTopic, cfg.KafkaGroupID)
	defer r.Close()

	log.Printf("[events] consuming %s from %s as %s", events.TypeOrderPaid, cfg.KafkaEventsTopic, cfg.KafkaGroupID)
	err = events.Consume(ctx, r, events.TypeOrderPaid, func(ctx context.Context, e events.Event) error {
		return tracker.OnOrderPaid(ctx, e.OrderID)
	})
	if err != nil {
		log.Printf("[events] consumer stopped: %v", err)
	}
}
