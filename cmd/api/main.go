package main

import (
	"context"
	"log"
	"net/http"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/config"
	"github.com/imrishuroy/go-storefront/internal/events"
	"github.com/imrishuroy/go-storefront/internal/handlers"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/metrics"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/search"
	"github.com/imrishuroy/go-storefront/internal/store/memory"
	"github.com/imrishuroy/go-storefront/internal/store/postgres"
)

// storefrontStore is what the API needs from either store driver.
type storefrontStore interface {
	orders.Store
	orders.ReadStore
	cart.Store
	catalog.Store
	handlers.AddressReader
	search.ProductLoader
	search.CategoryReader
}

func setupRouter(cfg handlers.HandlerConfig, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	handlers.RegisterOrdersRoutes(r, cfg)
	handlers.RegisterProductsRoutes(r, cfg)
	handlers.RegisterCartRoutes(r, cfg)

	return r
}

func openStore(ctx context.Context, cfg *config.Config) (storefrontStore, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Printf("[api] using in-memory store")
		return memory.New(), func() {}, nil
	}
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.New(pool), pool.Close, nil
}

// timerScheduler closes orders in-process. It stands in for SQS when no
// queue is configured and does not survive a restart.
type timerScheduler struct {
	closer *orders.Closer
}

func (s timerScheduler) ScheduleClose(_ context.Context, orderID int64, ttl time.Duration) error {
	time.AfterFunc(ttl, func() {
		if _, err := s.closer.Close(context.Background(), orderID); err != nil {
			log.Printf("[api] close order=%d: %v", orderID, err)
		}
	})
	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	var scheduler orders.Scheduler = timerScheduler{closer: orders.NewCloser(store)}
	if cfg.OrdersQueueURL != "" {
		scheduler = clients.CloseScheduler(cfg.OrdersQueueURL)
	} else {
		log.Printf("[api] ORDERS_QUEUE_URL not set, closing unpaid orders in-process")
	}

	esClient, err := search.NewElasticClient(cfg.ElasticsearchURLs, nil)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaEnabled() {
		w := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		defer w.Close()
		publisher = events.NewKafkaPublisher(w)
	}

	hcfg := handlers.HandlerConfig{
		Addresses: store,
		Placer:    orders.NewPlacer(store, scheduler, cfg.OrderTTL),
		Orders:    orders.NewReader(store),
		Events:    publisher,
		Metrics:   metrics.NewServerMetrics(prometheus.DefaultRegisterer, cfg.MetricsNamespace),
		Search:    search.NewService(cfg.SearchIndex, search.NewElasticBackend(esClient), store, store),
		Products:  catalog.NewService(store),
		Cart:      cart.NewService(store),
	}
	if cfg.IdempotencyTable != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}

	r := setupRouter(hcfg, prometheus.DefaultGatherer)

	// if RUN_LOCAL is set, run local HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req lambdaevents.APIGatewayProxyRequest) (lambdaevents.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
