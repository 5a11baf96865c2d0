package contract

import (
	"context"

	"roomlink-be/internal/model"

	"github.com/google/uuid"
)

type MessageRepository interface {
	CreateChatMessage(ctx context.Context, message *model.ChatMessage) error
	CreateAudioMessage(ctx context.Context, message *model.AudioMessage) error
	FindChatBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]model.ChatMessage, error)
}
