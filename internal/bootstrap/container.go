package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"retention-flow-be/internal/config"
	"retention-flow-be/internal/controller"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/pkg/mailer"
	"retention-flow-be/internal/repository/memory"
	"retention-flow-be/internal/repository/unitofwork"
	"retention-flow-be/internal/service"
	pktNats "retention-flow-be/pkg/nats"
	"retention-flow-be/pkg/payment"
)

type Container struct {
	// Controllers
	FlowController      controller.IFlowController
	AnalyticsController controller.IAnalyticsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for cmd/etl.
	ETLService service.ETLService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// In-memory wizard sessions
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Flow.SessionTTLMinutes) * time.Minute)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Analytics.EventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Analytics.EventTopic,
		uowFactory,
		sysLogger,
	)

	tracker := service.NewTrackerService(
		cfg.Analytics.Enabled,
		cfg.Analytics.BufferSize,
		publisherService,
		sysLogger,
	)

	variantService := service.NewVariantService(uowFactory, sysLogger)
	paymentGateway := payment.NewStubGateway()

	flowService := service.NewFlowService(
		cfg,
		uowFactory,
		variantService,
		sessionRepo,
		paymentGateway,
		tracker,
		eventPublisher,
		sysLogger,
	)

	analyticsService := service.NewAnalyticsService(uowFactory, tracker)
	etlService := service.NewETLService(cfg, uowFactory, emailService, eventPublisher, sysLogger)

	// 4. Controllers
	return &Container{
		FlowController:      controller.NewFlowController(flowService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService, etlService, sysLogger),

		ConsumerService: consumerService,
		ETLService:      etlService,
	}
}
