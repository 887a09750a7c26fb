package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SeredDEV/store-payments/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateCollection(ctx context.Context, collection *domain.PaymentCollection) error {
	now := time.Now().UTC()
	collection.CreatedAt = now
	collection.UpdatedAt = now
	return r.db.WithContext(ctx).Create(collection).Error
}

func (r *gormRepository) GetCollection(ctx context.Context, id snowflake.ID) (*domain.PaymentCollection, error) {
	var collection domain.PaymentCollection
	err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *gormRepository) UpdateCollection(ctx context.Context, collection *domain.PaymentCollection) error {
	collection.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(collection).Error
}

func (r *gormRepository) CreateSession(ctx context.Context, session *domain.PaymentSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gormRepository) GetSession(ctx context.Context, id snowflake.ID) (*domain.PaymentSession, error) {
	var session domain.PaymentSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *gormRepository) ListSessions(ctx context.Context, collectionID snowflake.ID) ([]domain.PaymentSession, error) {
	var sessions []domain.PaymentSession
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *gormRepository) UpdateSession(ctx context.Context, session *domain.PaymentSession) error {
	session.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *gormRepository) DeleteSession(ctx context.Context, id snowflake.ID) error {
	result := r.db.WithContext(ctx).Delete(&domain.PaymentSession{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *gormRepository) FindByReference(ctx context.Context, provider, reference string) (*domain.PaymentSession, error) {
	var sessions []domain.PaymentSession
	err := r.db.WithContext(ctx).
		Where("provider = ? AND reference = ?", provider, reference).
		Limit(2).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	// Zero or more than one match both mean we cannot attribute the
	// notification to a session.
	if len(sessions) != 1 {
		return nil, domain.ErrSessionNotFound
	}
	return &sessions[0], nil
}
