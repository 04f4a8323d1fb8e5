// Package events publishes order lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event kinds, appended to the configured subject prefix.
const (
	OrderCreated   = "order.created"
	OrderClaimed   = "order.claimed"
	OrderCompleted = "order.completed"
	OrderRequeued  = "order.requeued"
)

// OrderEvent is the JSON payload of every lifecycle event.
type OrderEvent struct {
	OrderID   int64     `json:"order_id"`
	PrinterID *int64    `json:"printer_id,omitempty"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// Publisher emits order events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, kind string, ev OrderEvent) error
	Close()
}

// NATSPublisher publishes events on <prefix>.<kind>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url and keeps reconnecting forever.
func NewNATSPublisher(url, prefix string, log *zap.SugaredLogger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("printfarmd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warnw("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infow("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the full subject for an event kind.
func Subject(prefix, kind string) string {
	if prefix == "" {
		return kind
	}
	return prefix + "." + kind
}

func (p *NATSPublisher) Publish(ctx context.Context, kind string, ev OrderEvent) error {
	if p.nc == nil || p.nc.IsClosed() {
		return fmt.Errorf("nats not connected")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", kind, err)
	}
	return p.nc.Publish(Subject(p.prefix, kind), payload)
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// Nop discards every event. Used when no NATS URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, OrderEvent) error { return nil }
func (Nop) Close()                                            {}
