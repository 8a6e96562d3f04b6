package postgres

import (
	"context"

	"timele/domain"

	"gorm.io/gorm"
)

type PredictionEventRepository struct {
	DB *gorm.DB
}

func NewPredictionEventRepository(db *gorm.DB) *PredictionEventRepository {
	return &PredictionEventRepository{
		DB: db,
	}
}

func (r *PredictionEventRepository) SaveEvent(ctx context.Context, event domain.PredictionEvent) error {
	return r.DB.WithContext(ctx).Create(&event).Error
}
