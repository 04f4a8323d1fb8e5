package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

const defaultListLimit = 100

// CreateOrder validates the requested items and persists a queued order.
// Nothing is written unless every item is valid.
func (s *gormStore) CreateOrder(ctx context.Context, items []OrderItemInput) (*model.Order, error) {
	if len(items) == 0 {
		return nil, validationErrorf(CodeItemsRequired, "items[] required")
	}

	cleaned := make([]model.OrderItem, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Qty <= 0 {
			return nil, validationErrorf(CodeInvalidQuantity, "qty must be > 0")
		}
		cleaned = append(cleaned, model.OrderItem{PrintableID: it.PrintableID, Qty: it.Qty})
		ids = append(ids, it.PrintableID)
	}

	order := &model.Order{
		Status:   model.OrderQueued,
		Items:    cleaned,
		Progress: 0,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []int64
		if err := tx.Model(&model.Printable{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return fmt.Errorf("failed to look up printables: %w", err)
		}
		for _, it := range cleaned {
			if !slices.Contains(found, it.PrintableID) {
				return validationErrorf(CodeUnknownPrintable, "printable_id %d not found", it.PrintableID)
			}
		}

		now := s.now()
		order.CreatedAt = now
		order.UpdatedAt = now
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns the order with the given id.
func (s *gormStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return loadOrder(s.db.WithContext(ctx), id)
}

// ListOrders returns orders newest first.
func (s *gormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var orders []model.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// TransitionOrder applies a guarded status change in its own transaction.
func (s *gormStore) TransitionOrder(ctx context.Context, id int64, t Transition) (*model.Order, error) {
	if !t.To.Valid() {
		return nil, validationErrorf(CodeInvalidTransition, "unknown order status %q", t.To)
	}

	var out *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.transitionOrder(tx, id, t)
		out = order
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *gormStore) transitionOrder(tx *gorm.DB, id int64, t Transition) (*model.Order, error) {
	order, err := loadOrder(forUpdate(tx, false), id)
	if err != nil {
		return nil, err
	}

	if len(t.From) > 0 && !slices.Contains(t.From, order.Status) {
		return nil, conflictErrorf(CodeStatusMismatch, "order %d is %s, expected one of %v", id, order.Status, t.From)
	}
	if !model.CanTransition(order.Status, t.To) {
		return nil, conflictErrorf(CodeInvalidTransition, "order %d cannot move from %s to %s", id, order.Status, t.To)
	}

	updates := make(map[string]any, len(t.Fields)+1)
	for k, v := range t.Fields {
		updates[k] = v
	}
	updates["status"] = string(t.To)

	changed, err := s.updateOrderIf(tx, id, updates, "status = ?", string(order.Status))
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, conflictErrorf(CodeStatusMismatch, "order %d changed concurrently", id)
	}
	return loadOrder(tx, id)
}

// updateOrderIf writes updates to order id only while the extra condition
// holds, and always refreshes updated_at. It reports whether a row changed.
// Every mutating path on orders goes through here.
func (s *gormStore) updateOrderIf(tx *gorm.DB, id int64, updates map[string]any, query string, args ...any) (bool, error) {
	updates["updated_at"] = s.now()
	res := tx.Model(&model.Order{}).Where("id = ?", id).Where(query, args...).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update order %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func loadOrder(tx *gorm.DB, id int64) (*model.Order, error) {
	var order model.Order
	err := tx.Where("id = ?", id).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErrorf("order %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}
