package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStore_RecordProgress(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()
	order, printer := claimedOrder(t, s)

	wrote, err := s.RecordProgress(ctx, order.ID, printer.ID, 40)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.RecordProgress(ctx, order.ID, printer.ID+1, 60)
	require.NoError(t, err)
	assert.False(t, wrote, "only the assigned printer reports progress")

	wrote, err = s.RecordProgress(ctx, order.ID, printer.ID, 10)
	require.NoError(t, err)
	assert.False(t, wrote, "progress does not go backwards")

	_, err = s.RecordProgress(ctx, order.ID, printer.ID, 101)
	requireCode(t, err, ErrValidation, CodeInvalidProgress)

	p, err := s.OrderProgress(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Progress)

	_, err = s.CompleteOrder(ctx, order.ID, printer.ID)
	require.NoError(t, err)
	wrote, err = s.RecordProgress(ctx, order.ID, printer.ID, 90)
	require.NoError(t, err)
	assert.False(t, wrote, "late progress never touches a complete order")
}

func TestGormStore_OrderProgress(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, []OrderItemInput{{PrintableID: 1, Qty: 1}})
	require.NoError(t, err)

	p, err := s.OrderProgress(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Progress)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, p.Timestamp.Equal(got.UpdatedAt))

	_, err = s.OrderProgress(ctx, 12345)
	requireCode(t, err, ErrNotFound, CodeNotFound)
}
