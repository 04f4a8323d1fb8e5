package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "printfarm.order.completed", Subject("printfarm", OrderCompleted))
	assert.Equal(t, "order.claimed", Subject("", OrderClaimed))
}

func TestOrderEvent_JSON(t *testing.T) {
	printer := int64(4)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := json.Marshal(OrderEvent{OrderID: 9, PrinterID: &printer, Status: "printing", At: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":9,"printer_id":4,"status":"printing","at":"2025-03-01T12:00:00Z"}`, string(b))

	b, err = json.Marshal(OrderEvent{OrderID: 9, Status: "queued", At: at})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "printer_id")
}

func TestNATSPublisher_ConnectFailure(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "printfarm", zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestNATSPublisher_ClosedConnection(t *testing.T) {
	p := &NATSPublisher{prefix: "printfarm"}
	assert.EqualError(t, p.Publish(context.Background(), OrderCreated, OrderEvent{OrderID: 1}), "nats not connected")
	p.Close()
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, OrderEvent{OrderID: 1}))
	p.Close()
}
