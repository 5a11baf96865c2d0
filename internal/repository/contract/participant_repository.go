package contract

import (
	"context"

	"roomlink-be/internal/model"

	"github.com/google/uuid"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant) error
	Save(ctx context.Context, participant *model.Participant) error
	GetBySessionAndUser(ctx context.Context, sessionId, userId uuid.UUID) (*model.Participant, error)
	GetBySessionAndUsername(ctx context.Context, sessionId uuid.UUID, username string) (*model.Participant, error)

	// CountByStatus backs every capacity gate. Callers that gate a write on
	// the result must run both inside one unit-of-work transaction.
	CountByStatus(ctx context.Context, sessionId uuid.UUID, status string) (int64, error)

	FindBySession(ctx context.Context, sessionId uuid.UUID) ([]model.Participant, error)
	FindBySessionStatusAndType(ctx context.Context, sessionId uuid.UUID, status, requestType string) ([]model.Participant, error)
	FindPendingInvitesForUser(ctx context.Context, userId uuid.UUID) ([]model.Participant, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetChannelName(ctx context.Context, id uuid.UUID, channelName string) error
	SetConnectionQuality(ctx context.Context, id uuid.UUID, quality string) error
}
