package bootstrap

import (
	"context"
	"log"

	"roomlink-be/internal/config"
	"roomlink-be/internal/controller"
	"roomlink-be/internal/handler"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/pkg/mailer"
	"roomlink-be/internal/repository/unitofwork"
	"roomlink-be/internal/service"
	"roomlink-be/internal/websocket"

	pktNats "roomlink-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	RoomHandler         *handler.RoomHandler
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
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

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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
	wsLogger := logger.NewIsolatedLogger("logs/room.log")
	wsHub := websocket.NewHub(wsLogger)

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.RoomContentTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.RoomContentTopic,
		uowFactory,
		sysLogger,
	)

	sessionService := service.NewSessionService(uowFactory, natsPub, rdb, sysLogger)
	suggestionService := service.NewSuggestionService(uowFactory, sysLogger)

	// 3.5 Notification System
	notifService := service.NewNotificationService(
		uowFactory,
		natsSub,
		websocket.NewNotificationPusher(wsHub),
		emailService,
		wsLogger,
	)
	if natsSub != nil {
		go notifService.Start()
	}

	// 4. WebSocket wiring
	wsRouter := websocket.NewRouter(sessionService, suggestionService, publisherService, wsLogger)
	roomHandler := handler.NewRoomHandler(wsHub, wsRouter, sessionService, wsLogger)
	notifHandler := handler.NewNotificationHandler(notifService)

	return &Container{
		SessionController:   controller.NewSessionController(sessionService),
		ConsumerService:     consumerService,
		RoomHandler:         roomHandler,
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
