package api

import (
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"printfarm-backend/config"
	"printfarm-backend/internal/dispatch"
	"printfarm-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc       *dispatch.Service
	store     store.Store
	webpush   *webpush.Options
	mediaRoot string
	baseURL   string
	log       *zap.SugaredLogger
}

// NewHandler creates a new API handler.
func NewHandler(svc *dispatch.Service, webpushOptions *webpush.Options, storage config.StorageConfig, log *zap.SugaredLogger) *Handler {
	h := &Handler{
		svc:       svc,
		webpush:   webpushOptions,
		mediaRoot: storage.MediaRoot,
		baseURL:   strings.TrimRight(storage.PublicBaseURL, "/"),
		log:       log,
	}
	if svc != nil {
		h.store = svc.Store()
	}
	return h
}
