package model

import "time"

// Printable is a catalog entry that can be ordered.
type Printable struct {
	ID         int64  `gorm:"primaryKey"`
	SKU        string `gorm:"column:sku;size:64;uniqueIndex"`
	Name       string `gorm:"size:128;not null"`
	Color      string `gorm:"size:32;not null;default:''"`
	PriceCents int    `gorm:"not null;default:0"`
	// STLPath is relative to the configured media root; empty when no file was uploaded.
	STLPath   string `gorm:"column:stl_path;size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
