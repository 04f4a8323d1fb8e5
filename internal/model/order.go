package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrderItem is one catalog entry and the number of copies to print.
type OrderItem struct {
	PrintableID int64 `json:"printable_id"`
	Qty         int   `json:"qty"`
}

// Order is a customer request tracked through the print lifecycle.
// Items are written once at creation; CreatedAt defines claim order.
type Order struct {
	ID                int64                          `gorm:"primaryKey"`
	Status            OrderStatus                    `gorm:"size:16;not null;default:'unknown';index:idx_orders_status_created,priority:1"`
	Items             datatypes.JSONSlice[OrderItem] `gorm:"not null"`
	AssignedPrinterID *int64                         `gorm:"index"`
	Progress          int                            `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100"`
	CreatedAt         time.Time                      `gorm:"not null;index:idx_orders_status_created,priority:2"`
	UpdatedAt         time.Time                      `gorm:"not null"`
}
