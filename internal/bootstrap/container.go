package bootstrap

import (
	"context"
	"time"

	"lola-discovery-be/internal/config"
	"lola-discovery-be/internal/controller"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/pkg/metrics"
	"lola-discovery-be/internal/pkg/ratelimit"
	"lola-discovery-be/internal/repository/memory"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/internal/service"
	"lola-discovery-be/internal/worker"
	"lola-discovery-be/pkg/flow"
	pktNats "lola-discovery-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger  logger.ILogger
	Metrics *metrics.FlowMetrics

	// Controllers
	SessionController controller.ISessionController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	CleanupScheduler *worker.CleanupScheduler

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, graph *flow.Graph, sysLogger logger.ILogger) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	flowMetrics := metrics.NewFlowMetrics()

	var closers []func()

	// 2. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(context.Background(), cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			natsPub = pub
			closers = append(closers, pub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		client := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if _, err := client.Ping(ctx).Result(); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis, rate limiting is per process", map[string]interface{}{"error": err.Error()})
			client.Close()
		} else {
			rdb = client
			closers = append(closers, func() { client.Close() })
		}
		cancel()
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	closers = append(closers, func() { pubSub.Close() })

	publisherService := service.NewPublisherService(cfg.Session.EventTopic, pubSub)

	var sink service.EventSink
	if natsPub != nil {
		sink = natsPub
	}
	consumerService := service.NewConsumerService(pubSub, cfg.Session.EventTopic, sink, sysLogger)

	// 4. Services
	limiter := ratelimit.NewLimiter(rdb, cfg.Session.MaxSessionsPerIP, time.Hour)
	staleAfter := time.Duration(cfg.Session.StaleMinutes) * time.Minute
	staging := memory.NewStagingRepository(staleAfter)

	sessionService := service.NewSessionService(
		graph,
		uowFactory,
		limiter,
		publisherService,
		flowMetrics,
		sysLogger,
		service.SessionOptions{
			StrictOrder:    cfg.Flow.StrictOrder,
			IncludeSummary: cfg.Flow.IncludeSummary,
			StaleAfter:     staleAfter,
			Staging:        staging,
		},
	)
	responseService := service.NewResponseService(uowFactory, staging, sysLogger)

	cleanupScheduler := worker.NewCleanupScheduler(sessionService, cfg.Session.StaleMinutes, sysLogger)

	// 5. Controllers
	return &Container{
		Logger:            sysLogger,
		Metrics:           flowMetrics,
		SessionController: controller.NewSessionController(sessionService),
		AdminController:   controller.NewAdminController(responseService, sessionService, cfg.Session.StaleMinutes),
		ConsumerService:   consumerService,
		CleanupScheduler:  cleanupScheduler,
		closers:           closers,
	}
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
