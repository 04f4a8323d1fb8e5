package model

import "time"

// Printer is a physical worker polling for jobs via heartbeats.
type Printer struct {
	ID              int64         `gorm:"primaryKey"`
	Name            string        `gorm:"size:128;not null"`
	Status          PrinterStatus `gorm:"size:16;not null;default:'idle';index"`
	LastHeartbeatAt *time.Time    `gorm:"index"`
	CurrentOrderID  *int64        `gorm:"index"`
	CreatedAt       time.Time     `gorm:"not null"`
	UpdatedAt       time.Time     `gorm:"not null"`
}
