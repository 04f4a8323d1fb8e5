package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

// claimAttempts bounds how many queued candidates one heartbeat tries when
// it keeps losing the compare-and-swap to other printers.
const claimAttempts = 3

// Heartbeat records a printer's status report and, when the printer is idle
// and holds no order, claims the oldest queued order for it. Upsert, refresh
// and claim commit together or not at all.
func (s *gormStore) Heartbeat(ctx context.Context, hb HeartbeatInput) (*HeartbeatResult, error) {
	result := &HeartbeatResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		printer, registered, err := s.upsertPrinter(tx, hb.PrinterID, hb.Name, hb.Status)
		if err != nil {
			return err
		}
		result.Printer = printer
		result.Registered = registered

		if printer.CurrentOrderID != nil && printer.Status == model.PrinterPrinting {
			// Refresh only; terminal orders are never pulled back to printing.
			if _, err := s.updateOrderIf(tx, *printer.CurrentOrderID,
				map[string]any{"status": string(model.OrderPrinting)},
				"status IN ?", []string{string(model.OrderPrinting), string(model.OrderAssigned)},
			); err != nil {
				return err
			}
		}

		if printer.Status == model.PrinterIdle && printer.CurrentOrderID == nil {
			instruction, err := s.claimOldestQueued(tx, printer)
			if err != nil {
				return err
			}
			result.Instruction = instruction
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// claimOldestQueued hands the oldest queued order to printer. The candidate
// row is locked (skipping rows other claimants hold) and then flipped with a
// compare-and-swap on status, so an order is claimed at most once even on
// engines without row locks. A nil instruction means nothing was claimed.
func (s *gormStore) claimOldestQueued(tx *gorm.DB, printer *model.Printer) (*Instruction, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var order model.Order
		err := forUpdate(tx, true).
			Where("status = ?", string(model.OrderQueued)).
			Order("created_at ASC").
			Order("id ASC").
			Take(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select queued order: %w", err)
		}

		claimed, err := s.updateOrderIf(tx, order.ID, map[string]any{
			"status":              string(model.OrderPrinting),
			"assigned_printer_id": printer.ID,
		}, "status = ?", string(model.OrderQueued))
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}

		now := s.now()
		if err := tx.Model(&model.Printer{}).Where("id = ?", printer.ID).Updates(map[string]any{
			"current_order_id": order.ID,
			"status":           string(model.PrinterPrinting),
			"updated_at":       now,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to assign order %d to printer %d: %w", order.ID, printer.ID, err)
		}

		orderID := order.ID
		printer.CurrentOrderID = &orderID
		printer.Status = model.PrinterPrinting
		printer.UpdatedAt = now

		return &Instruction{
			JobID:     order.ID,
			OrderID:   order.ID,
			Items:     []model.OrderItem(order.Items),
			StartedAt: now,
		}, nil
	}
	return nil, nil
}
