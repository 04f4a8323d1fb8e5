// Package dispatch coordinates the store with the side effects of the job
// lifecycle: notifications, lifecycle events and metrics. Side effects run
// only after the store has committed and never change the outcome.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"printfarm-backend/internal/events"
	"printfarm-backend/internal/metrics"
	"printfarm-backend/internal/model"
	"printfarm-backend/internal/store"
)

// Notifier queues a completion notification. It must not block.
type Notifier interface {
	Dispatch(orderID int64) bool
}

// HeartbeatRequest is a decoded printer heartbeat.
type HeartbeatRequest struct {
	PrinterID *int64
	Name      string
	Status    model.PrinterStatus
	// Progress is the printer's self-reported progress on its current job.
	Progress *int
}

// Service is the application layer used by the HTTP handlers and the reaper.
type Service struct {
	store    store.Store
	notifier Notifier
	events   events.Publisher
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewService wires the store to its side effects. A nil notifier or
// publisher disables that side effect.
func NewService(s store.Store, notifier Notifier, pub events.Publisher, log *zap.SugaredLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		store:    s,
		notifier: notifier,
		events:   pub,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the underlying store for read-only handlers.
func (s *Service) Store() store.Store {
	return s.store
}

// CreateOrder queues a new order.
func (s *Service) CreateOrder(ctx context.Context, items []store.OrderItemInput) (*model.Order, error) {
	order, err := s.store.CreateOrder(ctx, items)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	s.publish(ctx, events.OrderCreated, order.ID, nil, order.Status)
	return order, nil
}

// Heartbeat registers the printer, claims work for it when idle and records
// any progress it reported on the job it already holds.
func (s *Service) Heartbeat(ctx context.Context, req HeartbeatRequest) (*store.HeartbeatResult, error) {
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, &store.Error{
			Kind:    store.ErrValidation,
			Code:    store.CodeInvalidProgress,
			Message: "progress must be between 0 and 100",
		}
	}

	res, err := s.store.Heartbeat(ctx, store.HeartbeatInput{
		PrinterID: req.PrinterID,
		Name:      req.Name,
		Status:    req.Status,
	})
	if err != nil {
		return nil, err
	}
	metrics.Heartbeats.WithLabelValues(statusLabel(res.Printer.Status)).Inc()

	if res.Registered && req.PrinterID != nil {
		s.log.Warnw("heartbeat from unknown printer id, registered a new printer",
			"stale_printer_id", *req.PrinterID, "printer_id", res.Printer.ID)
	}

	if res.Instruction != nil {
		metrics.OrdersClaimed.Inc()
		s.log.Infow("order claimed", "order_id", res.Instruction.OrderID, "printer_id", res.Printer.ID)
		s.publish(ctx, events.OrderClaimed, res.Instruction.OrderID, &res.Printer.ID, model.OrderPrinting)
		return res, nil
	}

	if req.Progress != nil && res.Printer.CurrentOrderID != nil {
		wrote, err := s.store.RecordProgress(ctx, *res.Printer.CurrentOrderID, res.Printer.ID, *req.Progress)
		if err != nil {
			// The heartbeat itself has committed; a progress failure is not fatal.
			s.log.Warnw("failed to record progress", "order_id", *res.Printer.CurrentOrderID, "printer_id", res.Printer.ID, "error", err)
		} else if !wrote {
			s.log.Debugw("progress report ignored", "order_id", *res.Printer.CurrentOrderID, "progress", *req.Progress)
		}
	}
	return res, nil
}

// Complete applies a completion report. Once the store has committed, the
// notification is queued without waiting for delivery.
func (s *Service) Complete(ctx context.Context, orderID, printerID int64) (*store.Completion, error) {
	res, err := s.store.CompleteOrder(ctx, orderID, printerID)
	if err != nil {
		if code := store.CodeOf(err); code != "" {
			metrics.CompletionRejected.WithLabelValues(code).Inc()
		}
		return nil, err
	}
	if res.AlreadyComplete {
		return res, nil
	}

	metrics.OrdersCompleted.Inc()
	s.log.Infow("order complete", "order_id", orderID, "printer_id", printerID, "printer_released", res.PrinterReleased)
	s.publish(ctx, events.OrderCompleted, orderID, &printerID, model.OrderComplete)

	if s.notifier != nil {
		s.notifier.Dispatch(orderID)
	}
	return res, nil
}

// RequeueStale returns orders held by printers silent for longer than lease.
func (s *Service) RequeueStale(ctx context.Context, lease time.Duration) ([]store.Requeued, error) {
	requeued, err := s.store.RequeueStale(ctx, s.now().Add(-lease))
	for _, r := range requeued {
		metrics.OrdersRequeued.Inc()
		s.log.Warnw("lease expired, order requeued", "order_id", r.OrderID, "printer_id", r.PrinterID)
		printerID := r.PrinterID
		s.publish(ctx, events.OrderRequeued, r.OrderID, &printerID, model.OrderQueued)
	}
	return requeued, err
}

func (s *Service) publish(ctx context.Context, kind string, orderID int64, printerID *int64, status model.OrderStatus) {
	err := s.events.Publish(ctx, kind, events.OrderEvent{
		OrderID:   orderID,
		PrinterID: printerID,
		Status:    string(status),
		At:        s.now(),
	})
	if err != nil {
		s.log.Warnw("failed to publish event", "kind", kind, "order_id", orderID, "error", err)
	}
}

// statusLabel keeps the metric label set bounded; printers may report any string.
func statusLabel(status model.PrinterStatus) string {
	switch status {
	case model.PrinterIdle, model.PrinterPrinting, model.PrinterOffline:
		return string(status)
	default:
		return "other"
	}
}
