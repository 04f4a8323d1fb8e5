package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"printfarm-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type fakeStore struct {
	mu      sync.Mutex
	subs    []model.PushSubscription
	listErr error
	deleted []string
}

func (f *fakeStore) ListPushSubscriptions(context.Context) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PushSubscription(nil), f.subs...), f.listErr
}

func (f *fakeStore) DeletePushSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeStore) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, 1, &fakeStore{}, &webpush.Options{}, zaptest.NewLogger(t).Sugar())

	assert.True(t, wp.Dispatch(123))
	assert.False(t, wp.Dispatch(124), "a full queue drops instead of blocking")

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	t.Run("sends to every subscription", func(t *testing.T) {
		store := &fakeStore{subs: []model.PushSubscription{
			{Endpoint: "https://example.com/a", P256DH: "k1", Auth: "a1"},
			{Endpoint: "https://example.com/b", P256DH: "k2", Auth: "a2"},
		}}
		wp := NewWorkerPool(1, 4, store, &webpush.Options{TTL: 60}, zaptest.NewLogger(t).Sugar())

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			endpoints []string
		)
		wg.Add(2)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				var p Payload
				assert.NoError(t, json.Unmarshal(payload, &p))
				assert.Equal(t, Payload{Title: "Order Complete", Body: "Order 7 has been completed", OrderID: 7}, p)
				assert.Equal(t, 60, options.TTL)
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				return response(http.StatusCreated), nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(ctx)

		require.True(t, wp.Dispatch(7))
		wg.Wait()
		assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, endpoints)
		assert.Empty(t, store.Deleted())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		store := &fakeStore{subs: []model.PushSubscription{{Endpoint: "https://example.com/expired"}}}
		wp := NewWorkerPool(1, 1, store, &webpush.Options{}, zaptest.NewLogger(t).Sugar())
		wp.sender = &mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		wp.notifyOrderComplete(context.Background(), 8)
		assert.Equal(t, []string{"https://example.com/expired"}, store.Deleted())
	})

	t.Run("send errors are swallowed", func(t *testing.T) {
		store := &fakeStore{subs: []model.PushSubscription{
			{Endpoint: "https://example.com/down"},
			{Endpoint: "https://example.com/up"},
		}}
		wp := NewWorkerPool(1, 1, store, &webpush.Options{}, zaptest.NewLogger(t).Sugar())

		var calls int
		wp.sender = &mockSender{
			SendFunc: func(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
				calls++
				if sub.Endpoint == "https://example.com/down" {
					return nil, errors.New("dial tcp: connection refused")
				}
				return response(http.StatusCreated), nil
			},
		}

		wp.notifyOrderComplete(context.Background(), 9)
		assert.Equal(t, 2, calls, "one failing endpoint does not stop the rest")
		assert.Empty(t, store.Deleted())
	})

	t.Run("store failure sends nothing", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("db down")}
		wp := NewWorkerPool(1, 1, store, &webpush.Options{}, zaptest.NewLogger(t).Sugar())
		wp.sender = &mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				t.Fatal("sender must not be called")
				return nil, nil
			},
		}

		wp.notifyOrderComplete(context.Background(), 10)
	})
}
