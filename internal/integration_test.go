package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"printfarm-backend/config"
	"printfarm-backend/internal/api"
	"printfarm-backend/internal/db"
	"printfarm-backend/internal/dispatch"
	"printfarm-backend/internal/reaper"
	"printfarm-backend/internal/store"
)

type notifierFunc func(int64) bool

func (f notifierFunc) Dispatch(id int64) bool { return f(id) }

// TestLeaseLifecycle drives the whole stack over HTTP: a printer claims an
// order and goes silent, the reaper requeues it, another printer finishes it
// and the original printer's late completion is rejected.
func TestLeaseLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t).Sugar()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "file:" + filepath.Join(t.TempDir(), "it.db") + "?_txlock=immediate&_busy_timeout=5000",
			LogLevel:    "silent",
			SeedCatalog: true,
		},
		Assignment: config.AssignmentConfig{Lease: 500 * time.Millisecond, ReapInterval: time.Hour},
	}

	gormDB, err := db.Init(&cfg.Database, log)
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	notified := make(chan int64, 4)
	svc := dispatch.NewService(store.NewGormStore(gormDB), notifierFunc(func(id int64) bool {
		notified <- id
		return true
	}), nil, log)
	router := api.NewRouter(api.NewHandler(svc, nil, config.StorageConfig{MediaRoot: t.TempDir()}, log), cfg.Server)
	sweeper := reaper.New(cfg.Assignment, svc, log)

	post := func(path, body string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var out map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w.Code, out
	}

	code, created := post("/api/orders", `{"items":[{"printable_id":1,"qty":2}]}`)
	require.Equal(t, http.StatusCreated, code)
	orderID := int64(created["order_id"].(float64))

	code, first := post("/api/printers/ping", `{"name":"silent","status":"idle"}`)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, first, "instruction")
	silentID := int64(first["printer_id"].(float64))

	// Nothing is stale yet.
	assert.Equal(t, 0, sweeper.SweepOnce(context.Background()))

	time.Sleep(700 * time.Millisecond)
	assert.Equal(t, 1, sweeper.SweepOnce(context.Background()))

	code, second := post("/api/printers/ping", `{"name":"healthy","status":"idle"}`)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, second, "instruction")
	instruction := second["instruction"].(map[string]any)
	assert.Equal(t, float64(orderID), instruction["order_id"])
	healthyID := int64(second["printer_id"].(float64))

	completeURL := "/api/jobs/" + strconv.FormatInt(orderID, 10) + "/complete"
	code, rejected := post(completeURL, `{"printer_id":`+strconv.FormatInt(silentID, 10)+`}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, store.CodePrinterMismatch, rejected["error"].(map[string]any)["code"])

	code, _ = post(completeURL, `{"printer_id":`+strconv.FormatInt(healthyID, 10)+`}`)
	require.Equal(t, http.StatusOK, code)

	select {
	case id := <-notified:
		assert.Equal(t, orderID, id)
	case <-time.After(time.Second):
		t.Fatal("completion was not handed to the notifier")
	}

	// The silent printer comes back; it was marked offline and holds nothing.
	code, back := post("/api/printers/ping", `{"printer_id":`+strconv.FormatInt(silentID, 10)+`,"status":"idle"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(silentID), back["printer_id"])
	assert.NotContains(t, back, "instruction")
}
