package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

// CompleteOrder applies a completion report from printerID. Only the printer
// the order was assigned to may complete it; an order without an assignment
// may be completed by anyone. The printer is released only if it still
// points at this order.
//
// Rows are locked printer first, then order, the same order Heartbeat and
// RequeueStale use.
func (s *gormStore) CompleteOrder(ctx context.Context, orderID, printerID int64) (*Completion, error) {
	if printerID <= 0 {
		return nil, validationErrorf(CodePrinterIDRequired, "printer_id required")
	}

	result := &Completion{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The reporting printer may not exist; Find locks it only if it does.
		var reporter []model.Printer
		if err := forUpdate(tx, false).Where("id = ?", printerID).Limit(1).Find(&reporter).Error; err != nil {
			return fmt.Errorf("failed to lock printer %d: %w", printerID, err)
		}

		order, err := loadOrder(forUpdate(tx, false), orderID)
		if err != nil {
			return err
		}

		if order.AssignedPrinterID != nil && *order.AssignedPrinterID != printerID {
			return conflictErrorf(CodePrinterMismatch, "printer mismatch")
		}

		if order.Status == model.OrderComplete {
			result.Order = order
			result.AlreadyComplete = true
			return nil
		}
		if !model.CanTransition(order.Status, model.OrderComplete) {
			return conflictErrorf(CodeInvalidTransition, "order %d is %s and cannot be completed", orderID, order.Status)
		}

		changed, err := s.updateOrderIf(tx, orderID,
			map[string]any{"status": string(model.OrderComplete)},
			"status = ?", string(order.Status),
		)
		if err != nil {
			return err
		}
		if !changed {
			return conflictErrorf(CodeStatusMismatch, "order %d changed concurrently", orderID)
		}

		released, err := s.releasePrinter(tx, printerID, orderID)
		if err != nil {
			return err
		}
		result.PrinterReleased = released

		result.Order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// releasePrinter clears the printer's assignment if it points at orderID.
func (s *gormStore) releasePrinter(tx *gorm.DB, printerID, orderID int64) (bool, error) {
	res := tx.Model(&model.Printer{}).
		Where("id = ? AND current_order_id = ?", printerID, orderID).
		Updates(map[string]any{
			"current_order_id": nil,
			"status":           string(model.PrinterIdle),
			"updated_at":       s.now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to release printer %d: %w", printerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
