package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printfarm-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Order store
	CreateOrder(ctx context.Context, items []OrderItemInput) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	TransitionOrder(ctx context.Context, id int64, t Transition) (*model.Order, error)

	// Progress reporter
	OrderProgress(ctx context.Context, id int64) (*Progress, error)
	RecordProgress(ctx context.Context, orderID, printerID int64, progress int) (bool, error)

	// Printer registry
	UpsertPrinter(ctx context.Context, id *int64, name string, status model.PrinterStatus) (*model.Printer, error)
	GetPrinter(ctx context.Context, id int64) (*model.Printer, error)
	ListPrinters(ctx context.Context) ([]model.Printer, error)

	// Assignment engine and completion validator
	Heartbeat(ctx context.Context, hb HeartbeatInput) (*HeartbeatResult, error)
	CompleteOrder(ctx context.Context, orderID, printerID int64) (*Completion, error)
	RequeueStale(ctx context.Context, cutoff time.Time) ([]Requeued, error)

	// Catalog and push subscriptions
	ListPrintables(ctx context.Context) ([]model.Printable, error)
	GetPrintable(ctx context.Context, id int64) (*model.Printable, error)
	SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DB exposes the underlying handle for migrations and ad-hoc admin queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// forUpdate adds a row lock on dialects that support one. SQLite has no
// row-level locks; there the write transaction itself is exclusive.
func forUpdate(tx *gorm.DB, skipLocked bool) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	locking := clause.Locking{Strength: clause.LockingStrengthUpdate}
	if skipLocked {
		locking.Options = clause.LockingOptionsSkipLocked
	}
	return tx.Clauses(locking)
}
