package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printfarm-backend/internal/model"
)

func TestGormStore_RequeueStale(t *testing.T) {
	s, clock := newSQLiteStore(t)
	ctx := context.Background()

	staleOrder, stale := claimedOrder(t, s)
	freshOrder, fresh := claimedOrder(t, s)

	_, err := s.RecordProgress(ctx, staleOrder.ID, stale.ID, 55)
	require.NoError(t, err)

	longAgo := clock.Now().Add(-time.Hour)
	require.NoError(t, s.db.Model(&model.Printer{}).Where("id = ?", stale.ID).
		Update("last_heartbeat_at", longAgo).Error)

	cutoff := clock.Now().Add(-10 * time.Minute)
	requeued, err := s.RequeueStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []Requeued{{OrderID: staleOrder.ID, PrinterID: stale.ID}}, requeued)

	got, err := s.GetOrder(ctx, staleOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderQueued, got.Status)
	assert.Nil(t, got.AssignedPrinterID)
	assert.Equal(t, 0, got.Progress)

	p, err := s.GetPrinter(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrinterOffline, p.Status)
	assert.Nil(t, p.CurrentOrderID)

	untouched, err := s.GetOrder(ctx, freshOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPrinting, untouched.Status)
	assert.Equal(t, fresh.ID, *untouched.AssignedPrinterID)

	// The requeued order is claimable again.
	res, err := s.Heartbeat(ctx, HeartbeatInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Instruction)
	assert.Equal(t, staleOrder.ID, res.Instruction.OrderID)

	again, err := s.RequeueStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, again)
}
