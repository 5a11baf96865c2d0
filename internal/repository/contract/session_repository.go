package contract

import (
	"context"

	"roomlink-be/internal/model"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Update(ctx context.Context, session *model.Session) error
	GetById(ctx context.Context, id uuid.UUID) (*model.Session, error)
	GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error)

	// GetByIdForUpdate loads the session with a row-level lock. Inside a
	// transaction this serializes concurrent capacity checks on one session.
	GetByIdForUpdate(ctx context.Context, id uuid.UUID) (*model.Session, error)

	RoomCodeExists(ctx context.Context, roomCode string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	FindActiveByHost(ctx context.Context, hostId uuid.UUID) ([]model.Session, error)

	// FindDiscoverableExcludingUser lists active, discoverable sessions the
	// given user neither hosts nor participates in.
	FindDiscoverableExcludingUser(ctx context.Context, userId uuid.UUID) ([]model.Session, error)
}
