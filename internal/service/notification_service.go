package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/pkg/mailer"
	"roomlink-be/internal/repository/unitofwork"
	"roomlink-be/pkg/events"
	pktNats "roomlink-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery pushes real-time updates to connected users.
// Implemented by the WebSocket hub.
type NotificationDelivery interface {
	Push(username string, notification model.Notification)
}

// NotificationService turns session events into mailbox entries. Delivery to
// a live socket and invite emails ride along best-effort; the persisted row
// is the source of truth the waiting-room UI polls.
type NotificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	subscriber   *pktNats.Subscriber
	delivery     NotificationDelivery
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	delivery NotificationDelivery,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory:   uowFactory,
		subscriber:   sub,
		delivery:     delivery,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event bus configured, notifications disabled", nil)
		return
	}
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.SessionInvited, events.RequestDecided, events.SessionClosed:
	default:
		// Unknown codes are acked, not retried.
		s.logger.Info("NotificationService", "Ignoring event", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	payload := event.Payload()

	uidStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without valid user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	message, _ := payload["message"].(string)
	if message == "" {
		message = fmt.Sprintf("Session update: %s", event.EventType())
	}

	notif := s.buildNotification(userId, message, payload)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Failed to save notification", map[string]interface{}{"user_id": userId.String(), "error": err.Error()})
		return err // NATS redelivers
	}

	if username, ok := payload["username"].(string); ok && s.delivery != nil {
		s.delivery.Push(username, notif)
	}

	if event.EventType() == events.SessionInvited {
		s.sendInviteEmail(payload)
	}

	return nil
}

func (s *NotificationService) buildNotification(userId uuid.UUID, message string, payload map[string]interface{}) model.Notification {
	metaMap := map[string]interface{}{
		"room_code": payload["room_code"],
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		Id:        uuid.New(),
		UserId:    userId,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		IsRead:    false,
		CreatedAt: time.Now(),
	}
}

func (s *NotificationService) sendInviteEmail(payload map[string]interface{}) {
	if s.emailService == nil {
		return
	}
	email, _ := payload["email"].(string)
	roomCode, _ := payload["room_code"].(string)
	if email == "" || roomCode == "" {
		return
	}
	if err := s.emailService.SendSessionInvite(email, roomCode); err != nil {
		s.logger.Warn("NotificationService", "Failed to send invite email", map[string]interface{}{"error": err.Error()})
	}
}

// GetNotifications fetches a page of a user's mailbox.
func (s *NotificationService) GetNotifications(ctx context.Context, userId uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().GetByUserId(ctx, userId, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().GetUnreadCount(ctx, userId)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAllAsRead(ctx, userId)
}
