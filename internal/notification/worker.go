package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"printfarm-backend/internal/metrics"
	"printfarm-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the subset of the store the workers need.
type SubscriptionStore interface {
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// Payload is the JSON body delivered to the browser.
type Payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	OrderID int64  `json:"order_id"`
}

// WorkerPool fans completed orders out to every push subscription.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.SugaredLogger
}

// NewWorkerPool creates a new worker pool. queueSize bounds how many
// completions may wait for a worker before Dispatch starts dropping them.
func NewWorkerPool(size, queueSize int, store SubscriptionStore, webpushOptions *webpush.Options, log *zap.SugaredLogger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, queueSize),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debugw("notification worker started", "worker", id)
	for {
		select {
		case orderID := <-wp.jobs:
			wp.notifyOrderComplete(ctx, orderID)
		case <-ctx.Done():
			wp.log.Debugw("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues a completion notification without blocking. It reports
// false when the queue is full and the notification was dropped.
func (wp *WorkerPool) Dispatch(orderID int64) bool {
	select {
	case wp.jobs <- orderID:
		return true
	default:
		metrics.NotificationsDropped.Inc()
		wp.log.Warnw("notification queue full, dropping", "order_id", orderID)
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

func (wp *WorkerPool) notifyOrderComplete(ctx context.Context, orderID int64) {
	subscriptions, err := wp.store.ListPushSubscriptions(ctx)
	if err != nil {
		wp.log.Errorw("failed to load push subscriptions", "order_id", orderID, "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(Payload{
		Title:   "Order Complete",
		Body:    fmt.Sprintf("Order %d has been completed", orderID),
		OrderID: orderID,
	})
	if err != nil {
		wp.log.Errorw("failed to encode push payload", "order_id", orderID, "error", err)
		return
	}

	wp.log.Infow("sending completion notifications", "order_id", orderID, "subscriptions", len(subscriptions))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		wp.log.Warnw("failed to send notification", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed.
	if resp.StatusCode == http.StatusGone {
		metrics.NotificationsSent.WithLabelValues("expired").Inc()
		wp.log.Infow("subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Warnw("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
		return
	}
	if resp.StatusCode >= 400 {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		wp.log.Warnw("push service rejected notification", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		return
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
}
