package main

import (
	"context"
	"log"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/config"
	"github.com/imrishuroy/go-storefront/internal/events"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/store/memory"
	"github.com/imrishuroy/go-storefront/internal/store/postgres"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var store orders.Store
	if cfg.StoreDriver == config.DriverMemory {
		store = memory.New()
	} else {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaEnabled() {
		w := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		defer w.Close()
		publisher = events.NewKafkaPublisher(w)
	}

	p := NewProcessor(
		orders.NewCloser(store),
		clients.CloseScheduler(cfg.OrdersQueueURL),
		clients.Metrics(cfg.MetricsNamespace),
		publisher,
	)

	// If RUN_LOCAL=true, process a single message from LOCAL_SQS_BODY.
	if cfg.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":1,"close_at":"1970-01-01T00:00:00Z"}`
		}
		event := lambdaevents.SQSEvent{
			Records: []lambdaevents.SQSMessage{{MessageId: "local", Body: testBody}},
		}
		if err := p.Handle(ctx, event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
