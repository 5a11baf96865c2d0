package unitofwork

import (
	"context"

	"roomlink-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	ParticipantRepository() contract.ParticipantRepository
	NotificationRepository() contract.NotificationRepository
	SuggestionRepository() contract.SuggestionRepository
	MessageRepository() contract.MessageRepository
}
