package contract

import (
	"context"

	"roomlink-be/internal/model"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetById(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetDiscoverable(ctx context.Context, id uuid.UUID, discoverable bool) error

	// FindDiscoverableExcludingSession lists users a host may invite: profile
	// discoverable, not the host, and not already accepted/pending in the session.
	FindDiscoverableExcludingSession(ctx context.Context, sessionId, hostId uuid.UUID) ([]model.User, error)
}
