package implementation

import (
	"context"
	"errors"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRepositoryImpl struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) contract.ParticipantRepository {
	return &ParticipantRepositoryImpl{db: db}
}

func (r *ParticipantRepositoryImpl) Create(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *ParticipantRepositoryImpl) Save(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *ParticipantRepositoryImpl) GetBySessionAndUser(ctx context.Context, sessionId, userId uuid.UUID) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionId, userId).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepositoryImpl) GetBySessionAndUsername(ctx context.Context, sessionId uuid.UUID, username string) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = participants.user_id").
		Where("participants.session_id = ? AND users.username = ?", sessionId, username).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepositoryImpl) CountByStatus(ctx context.Context, sessionId uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("session_id = ? AND status = ?", sessionId, status).
		Count(&count).Error
	return count, err
}

func (r *ParticipantRepositoryImpl) FindBySession(ctx context.Context, sessionId uuid.UUID) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ?", sessionId).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepositoryImpl) FindBySessionStatusAndType(ctx context.Context, sessionId uuid.UUID, status, requestType string) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ? AND status = ? AND request_type = ?", sessionId, status, requestType).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepositoryImpl) FindPendingInvitesForUser(ctx context.Context, userId uuid.UUID) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("Session.Host").
		Joins("JOIN sessions ON sessions.id = participants.session_id").
		Where("participants.user_id = ?", userId).
		Where("participants.status = ? AND participants.request_type = ?", model.StatusPending, model.RequestTypeInvite).
		Where("sessions.is_active = ?", true).
		Where("sessions.host_id != ?", userId).
		Order("participants.joined_at DESC").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("participant not found")
	}
	return nil
}

func (r *ParticipantRepositoryImpl) SetChannelName(ctx context.Context, id uuid.UUID, channelName string) error {
	return r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ?", id).
		Update("channel_name", channelName).Error
}

func (r *ParticipantRepositoryImpl) SetConnectionQuality(ctx context.Context, id uuid.UUID, quality string) error {
	return r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ?", id).
		Update("connection_quality", quality).Error
}
