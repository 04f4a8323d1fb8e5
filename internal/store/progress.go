package store

import (
	"context"

	"printfarm-backend/internal/model"
)

// OrderProgress returns the stored progress and the last update time.
func (s *gormStore) OrderProgress(ctx context.Context, id int64) (*Progress, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Progress{Progress: order.Progress, Timestamp: order.UpdatedAt}, nil
}

// RecordProgress stores a progress report from the printer holding the order.
// The write only lands while the order is printing, still assigned to that
// printer, and the value does not go backwards; a concurrent completion
// therefore always wins. It reports whether anything was written.
func (s *gormStore) RecordProgress(ctx context.Context, orderID, printerID int64, progress int) (bool, error) {
	if progress < 0 || progress > 100 {
		return false, validationErrorf(CodeInvalidProgress, "progress must be between 0 and 100, got %d", progress)
	}

	return s.updateOrderIf(s.db.WithContext(ctx), orderID,
		map[string]any{"progress": progress},
		"status = ? AND assigned_printer_id = ? AND progress <= ?",
		string(model.OrderPrinting), printerID, progress,
	)
}
