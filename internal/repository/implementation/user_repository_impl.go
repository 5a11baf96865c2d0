package implementation

import (
	"context"
	"errors"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepositoryImpl) GetById(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) SetDiscoverable(ctx context.Context, id uuid.UUID, discoverable bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_discoverable", discoverable)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

func (r *UserRepositoryImpl) FindDiscoverableExcludingSession(ctx context.Context, sessionId, hostId uuid.UUID) ([]model.User, error) {
	var users []model.User
	subQuery := r.db.
		Model(&model.Participant{}).
		Select("user_id").
		Where("session_id = ? AND status IN ?", sessionId, []string{model.StatusAccepted, model.StatusPending})

	err := r.db.WithContext(ctx).
		Where("is_discoverable = ?", true).
		Where("id != ?", hostId).
		Where("id NOT IN (?)", subQuery).
		Order("username ASC").
		Find(&users).Error
	return users, err
}
