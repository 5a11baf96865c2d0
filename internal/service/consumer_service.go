package service

import (
	"context"
	"encoding/json"

	"roomlink-be/internal/dto"
	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the room-content topic and writes chat and audio
// rows. Persistence is decoupled from delivery: the hub already fanned the
// event out by the time a message lands here.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistMessageRequest
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	var err error
	switch payload.Kind {
	case model.MessageKindChat:
		err = uow.MessageRepository().CreateChatMessage(ctx, &model.ChatMessage{
			Id:         uuid.New(),
			SessionId:  payload.SessionId,
			SenderName: payload.Sender,
			Content:    payload.Content,
		})
	case model.MessageKindAudio:
		err = uow.MessageRepository().CreateAudioMessage(ctx, &model.AudioMessage{
			Id:         uuid.New(),
			SessionId:  payload.SessionId,
			SenderName: payload.Sender,
			Content:    payload.Content,
		})
	default:
		cs.logger.Warn("ConsumerService", "Unknown message kind", map[string]interface{}{"kind": payload.Kind})
		msg.Ack()
		return
	}

	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to persist message", map[string]interface{}{
			"kind":       payload.Kind,
			"session_id": payload.SessionId.String(),
			"error":      err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
