package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SeredDEV/store-payments/internal/webhook/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) InsertEvent(ctx context.Context, event *domain.EventRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) FindEvent(ctx context.Context, provider, providerEventID string) (*domain.EventRecord, error) {
	var event domain.EventRecord
	err := r.db.WithContext(ctx).
		First(&event, "provider = ? AND provider_event_id = ?", provider, providerEventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) MarkProcessed(ctx context.Context, id snowflake.ID, processedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.EventRecord{}).
		Where("id = ?", id).
		Update("processed_at", processedAt).Error
}
