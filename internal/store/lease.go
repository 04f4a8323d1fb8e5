package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

// RequeueStale takes orders back from printers whose last heartbeat is older
// than cutoff. Each printer is handled in its own transaction and re-checked
// under lock, so a heartbeat that lands mid-sweep keeps its order.
func (s *gormStore) RequeueStale(ctx context.Context, cutoff time.Time) ([]Requeued, error) {
	var stale []model.Printer
	if err := s.db.WithContext(ctx).
		Where("current_order_id IS NOT NULL AND last_heartbeat_at < ?", cutoff).
		Find(&stale).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale printers: %w", err)
	}

	var requeued []Requeued
	for _, p := range stale {
		r, err := s.requeuePrinterOrder(ctx, p.ID, cutoff)
		if err != nil {
			return requeued, err
		}
		if r != nil {
			requeued = append(requeued, *r)
		}
	}
	return requeued, nil
}

func (s *gormStore) requeuePrinterOrder(ctx context.Context, printerID int64, cutoff time.Time) (*Requeued, error) {
	var out *Requeued
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var printer model.Printer
		if err := forUpdate(tx, false).Where("id = ?", printerID).Take(&printer).Error; err != nil {
			return fmt.Errorf("failed to load printer %d: %w", printerID, err)
		}
		if printer.CurrentOrderID == nil || printer.LastHeartbeatAt == nil || !printer.LastHeartbeatAt.Before(cutoff) {
			return nil
		}
		orderID := *printer.CurrentOrderID

		changed, err := s.updateOrderIf(tx, orderID, map[string]any{
			"status":              string(model.OrderQueued),
			"assigned_printer_id": nil,
			"progress":            0,
		}, "status IN ? AND assigned_printer_id = ?",
			[]string{string(model.OrderPrinting), string(model.OrderAssigned)}, printerID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Printer{}).Where("id = ?", printerID).Updates(map[string]any{
			"current_order_id": nil,
			"status":           string(model.PrinterOffline),
			"updated_at":       s.now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to release printer %d: %w", printerID, err)
		}

		if changed {
			out = &Requeued{OrderID: orderID, PrinterID: printerID}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
