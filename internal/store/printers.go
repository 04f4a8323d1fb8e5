package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

// DefaultPrinterName is used when a heartbeat carries no name.
const DefaultPrinterName = "printer"

// UpsertPrinter registers a heartbeat outside of the assignment flow.
func (s *gormStore) UpsertPrinter(ctx context.Context, id *int64, name string, status model.PrinterStatus) (*model.Printer, error) {
	var out *model.Printer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		printer, _, err := s.upsertPrinter(tx, id, name, status)
		out = printer
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// upsertPrinter updates the printer in place when id resolves. An absent or
// unknown id registers a new printer; the unknown id is never reused.
func (s *gormStore) upsertPrinter(tx *gorm.DB, id *int64, name string, status model.PrinterStatus) (*model.Printer, bool, error) {
	if name == "" {
		name = DefaultPrinterName
	}
	if status == "" {
		status = model.PrinterIdle
	}
	now := s.now()

	if id != nil {
		var printer model.Printer
		err := forUpdate(tx, false).Where("id = ?", *id).Take(&printer).Error
		switch {
		case err == nil:
			if err := tx.Model(&model.Printer{}).Where("id = ?", printer.ID).Updates(map[string]any{
				"name":              name,
				"status":            string(status),
				"last_heartbeat_at": now,
				"updated_at":        now,
			}).Error; err != nil {
				return nil, false, fmt.Errorf("failed to update printer %d: %w", printer.ID, err)
			}
			printer.Name = name
			printer.Status = status
			printer.LastHeartbeatAt = &now
			printer.UpdatedAt = now
			return &printer, false, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("failed to load printer %d: %w", *id, err)
		}
	}

	printer := &model.Printer{
		Name:            name,
		Status:          status,
		LastHeartbeatAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Create(printer).Error; err != nil {
		return nil, false, fmt.Errorf("failed to register printer: %w", err)
	}
	return printer, true, nil
}

// GetPrinter returns the printer with the given id.
func (s *gormStore) GetPrinter(ctx context.Context, id int64) (*model.Printer, error) {
	var printer model.Printer
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&printer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErrorf("printer %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load printer %d: %w", id, err)
	}
	return &printer, nil
}

// ListPrinters returns all known printers by id.
func (s *gormStore) ListPrinters(ctx context.Context) ([]model.Printer, error) {
	var printers []model.Printer
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&printers).Error; err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	return printers, nil
}
