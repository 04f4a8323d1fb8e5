package model

// OrderStatus is the lifecycle state of an Order.
type OrderStatus string

const (
	// OrderUnknown is the column default and is never reached by normal flow.
	OrderUnknown OrderStatus = "unknown"
	OrderQueued  OrderStatus = "queued"
	// OrderAssigned is kept for schema and API compatibility; claims move
	// straight from queued to printing.
	OrderAssigned OrderStatus = "assigned"
	OrderPrinting OrderStatus = "printing"
	OrderComplete OrderStatus = "complete"
	OrderFailed   OrderStatus = "failed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderUnknown:  {OrderQueued},
	OrderQueued:   {OrderAssigned, OrderPrinting, OrderComplete, OrderFailed},
	OrderAssigned: {OrderPrinting, OrderQueued, OrderComplete, OrderFailed},
	OrderPrinting: {OrderPrinting, OrderQueued, OrderComplete, OrderFailed},
	OrderComplete: nil,
	OrderFailed:   nil,
}

// Valid reports whether s is one of the declared statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether s has no outgoing edges.
func (s OrderStatus) Terminal() bool {
	return s == OrderComplete || s == OrderFailed
}

// CanTransition reports whether an order in status from may move to status to.
// printing -> printing is allowed so heartbeats can refresh updated_at.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PrinterStatus is the state a printer reports on its heartbeat. Values other
// than idle and printing are stored as-is but never enable assignment.
type PrinterStatus string

const (
	PrinterIdle     PrinterStatus = "idle"
	PrinterPrinting PrinterStatus = "printing"
	// PrinterOffline is set by the lease reaper when a printer stops heartbeating.
	PrinterOffline PrinterStatus = "offline"
)
