package implementation

import (
	"context"
	"errors"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"

	"gorm.io/gorm"
)

type SuggestionRepositoryImpl struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) contract.SuggestionRepository {
	return &SuggestionRepositoryImpl{db: db}
}

func (r *SuggestionRepositoryImpl) AllEntries(ctx context.Context) ([]model.CommandSuggestion, error) {
	var suggestions []model.CommandSuggestion
	// Insertion order keeps first-match-wins deterministic across lookups.
	err := r.db.WithContext(ctx).Order("id ASC").Find(&suggestions).Error
	return suggestions, err
}

func (r *SuggestionRepositoryImpl) GetOrCreate(ctx context.Context, suggestion *model.CommandSuggestion) (bool, error) {
	var existing model.CommandSuggestion
	err := r.db.WithContext(ctx).Where("keyword = ?", suggestion.Keyword).First(&existing).Error
	if err == nil {
		*suggestion = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.db.WithContext(ctx).Create(suggestion).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *SuggestionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CommandSuggestion{}).Count(&count).Error
	return count, err
}
