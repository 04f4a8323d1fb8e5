package store

import (
	"time"

	"printfarm-backend/internal/model"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	PrintableID int64
	Qty         int
}

// OrderFilter narrows ListOrders. Zero values mean no filtering.
type OrderFilter struct {
	Status model.OrderStatus
	Limit  int
}

// Transition is a conditional status change. When From is non-empty the
// update only applies if the current status is one of them.
type Transition struct {
	From   []model.OrderStatus
	To     model.OrderStatus
	Fields map[string]any
}

// Progress is the externally visible progress of an order.
type Progress struct {
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

// HeartbeatInput is a printer's status report.
type HeartbeatInput struct {
	PrinterID *int64
	Name      string
	Status    model.PrinterStatus
}

// Instruction describes a job a printer has just claimed.
type Instruction struct {
	JobID     int64             `json:"job_id"`
	OrderID   int64             `json:"order_id"`
	Items     []model.OrderItem `json:"items"`
	StartedAt time.Time         `json:"started_at"`
}

// HeartbeatResult is the outcome of a heartbeat. Instruction is nil unless
// a claim happened during this call.
type HeartbeatResult struct {
	Printer     *model.Printer
	Instruction *Instruction
	// Registered is true when a new printer row was created.
	Registered bool
}

// Completion is the outcome of a successful completion report.
type Completion struct {
	Order *model.Order
	// PrinterReleased is true when the reporting printer was pointing at
	// this order and has been set back to idle.
	PrinterReleased bool
	// AlreadyComplete is true when the order was complete before the call
	// and nothing was written.
	AlreadyComplete bool
}

// Requeued records an order taken back from a silent printer.
type Requeued struct {
	OrderID   int64
	PrinterID int64
}
