package implementation

import (
	"context"
	"errors"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *SessionRepositoryImpl) GetById(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Preload("Host").Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepositoryImpl) GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Preload("Host").Where("room_code = ?", roomCode).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByIdForUpdate acquires SELECT ... FOR UPDATE on the session row. Only
// meaningful inside a transaction; concurrent capacity checks on the same
// session serialize on this lock.
func (r *SessionRepositoryImpl) GetByIdForUpdate(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepositoryImpl) RoomCodeExists(ctx context.Context, roomCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("room_code = ?", roomCode).
		Count(&count).Error
	return count > 0, err
}

func (r *SessionRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("session not found")
	}
	return nil
}

func (r *SessionRepositoryImpl) FindActiveByHost(ctx context.Context, hostId uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("host_id = ? AND is_active = ?", hostId, true).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepositoryImpl) FindDiscoverableExcludingUser(ctx context.Context, userId uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	subQuery := r.db.
		Model(&model.Participant{}).
		Select("session_id").
		Where("user_id = ?", userId)

	err := r.db.WithContext(ctx).
		Preload("Host").
		Where("is_active = ? AND is_discoverable = ?", true, true).
		Where("host_id != ?", userId).
		Where("id NOT IN (?)", subQuery).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
