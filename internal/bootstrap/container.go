package bootstrap

import (
	"context"
	"log"
	"strings"

	"teamcollab-be/internal/config"
	"teamcollab-be/internal/controller"
	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/events"
	"teamcollab-be/internal/handler"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/pkg/mailer"
	"teamcollab-be/internal/repository/memory"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/service"
	"teamcollab-be/internal/websocket"
	"teamcollab-be/pkg/llm/factory"
	pktNats "teamcollab-be/pkg/nats"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"
	"teamcollab-be/pkg/orchestration/decider"
	"teamcollab-be/pkg/orchestration/metrics"
	"teamcollab-be/pkg/orchestration/processor"
	"teamcollab-be/pkg/orchestration/summary"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConversationController controller.IConversationController
	MetricsController      controller.IMetricsController

	// WebSockets
	ConversationSocketHandler *handler.ConversationSocketHandler
	WebSocketHub              *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	SummarySweeper      *service.SummarySweeper

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	clock := orchestration.SystemClock{}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Job Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Providers
	registry := factory.NewRegistry(cfg.Ai.LLMProvider)
	if cfg.Ai.OpenAIAPIKey != "" {
		openaiProvider, err := factory.NewLLMProvider(factory.ProviderOpenAI, cfg.Ai.DefaultModel, cfg.Ai.OpenAIBaseURL, cfg.Ai.OpenAIAPIKey)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize OpenAI provider: %v", err)
		}
		registry.Register(factory.ProviderOpenAI, openaiProvider)
	}
	ollamaProvider, err := factory.NewLLMProvider(factory.ProviderOllama, cfg.Ai.DefaultModel, cfg.Ai.OllamaBaseURL, "")
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Ollama provider: %v", err)
	}
	registry.Register(factory.ProviderOllama, ollamaProvider)
	for _, model := range strings.Split(cfg.Ai.OllamaModels, ",") {
		if model = strings.TrimSpace(model); model != "" {
			registry.Route(model, factory.ProviderOllama)
		}
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.DefaultModel)

	settings := memory.NewSettingsRepository(uowFactory, entity.SystemSettings{
		LlmModel:                     cfg.Ai.DefaultModel,
		SummaryLlmModel:              cfg.Ai.SummaryModel,
		AssistantInteractionLlmModel: cfg.Ai.InteractionModel,
	}, cfg.Ai.SettingsCacheTTL)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}
	eventPublisher := events.NewNatsPublisher(natsPub, sysLogger)

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 5. Orchestration Core
	recorder := metrics.NewRecorder(uowFactory, clock, sysLogger)
	interactionDecider := decider.NewDecider(registry, settings, recorder, llmLogger, cfg.Ai.ModelTimeout)
	messageProcessor := processor.NewProcessor(
		uowFactory,
		processor.NewModelResolver(uowFactory, settings, registry),
		recorder,
		clock,
		llmLogger,
		cfg.Ai.ModelTimeout,
	)
	summaryGenerator := summary.NewGenerator(uowFactory, settings, registry, recorder, eventPublisher, clock, llmLogger, cfg.Ai.ModelTimeout)
	spendingGuard := budget.NewGuard(uowFactory, eventPublisher, clock, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Jobs.MessageCreatedTopic, pubSub)
	conversationService := service.NewConversationService(
		uowFactory,
		publisherService,
		interactionDecider,
		messageProcessor,
		summaryGenerator,
		spendingGuard,
		wsHub, // Hub implements ConversationNotifier
		clock,
		sysLogger,
	)
	metricsService := service.NewMetricsService(uowFactory, spendingGuard, clock)
	consumerService := service.NewConsumerService(pubSub, cfg.Jobs.MessageCreatedTopic, conversationService, sysLogger)
	sweeper := service.NewSummarySweeper(cfg.Jobs.SummarySweepSpec, uowFactory, conversationService, clock, sysLogger)

	var notifService *service.NotificationService
	if natsSub != nil {
		notifService = service.NewNotificationService(uowFactory, natsSub, emailService, wsHub, sysLogger)
	}

	c := &Container{
		ConversationController:    controller.NewConversationController(conversationService),
		MetricsController:         controller.NewMetricsController(metricsService),
		ConversationSocketHandler: handler.NewConversationSocketHandler(conversationService, wsHub, wsLogger),
		WebSocketHub:              wsHub,

		ConsumerService:     consumerService,
		NotificationService: notifService,
		SummarySweeper:      sweeper,
	}
	c.closers = append(c.closers, func() { _ = pubSub.Close() }, func() { _ = rdb.Close() })
	if natsSub != nil {
		c.closers = append(c.closers, natsSub.Close)
	}
	if natsPub != nil {
		c.closers = append(c.closers, natsPub.Close)
	}
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = llmLogger.Sync()
		_ = wsLogger.Sync()
	})
	return c
}

// Start runs the background workers until ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.NotificationService != nil {
		if err := c.NotificationService.Start(ctx); err != nil {
			log.Printf("[WARN] Notification service not started: %v", err)
		}
	}
	return c.SummarySweeper.Start()
}

func (c *Container) Close() {
	c.SummarySweeper.Stop()
	for _, closer := range c.closers {
		closer()
	}
}
