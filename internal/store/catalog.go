package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printfarm-backend/internal/model"
)

// ListPrintables returns the catalog ordered by id.
func (s *gormStore) ListPrintables(ctx context.Context) ([]model.Printable, error) {
	var printables []model.Printable
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&printables).Error; err != nil {
		return nil, fmt.Errorf("failed to list printables: %w", err)
	}
	return printables, nil
}

// GetPrintable returns a single catalog entry.
func (s *gormStore) GetPrintable(ctx context.Context, id int64) (*model.Printable, error) {
	var p model.Printable
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErrorf("printable %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load printable %d: %w", id, err)
	}
	return &p, nil
}

// SavePushSubscription creates or replaces a subscription keyed by endpoint.
func (s *gormStore) SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// DeletePushSubscription removes a subscription; unknown endpoints are ignored.
func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

// ListPushSubscriptions returns every stored subscription.
func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
