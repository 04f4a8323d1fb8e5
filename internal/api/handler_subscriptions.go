package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/model"
	"printfarm-backend/internal/store"
)

type subscriptionKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// putSubscriptionRequest is the browser's PushSubscription.toJSON() shape.
type putSubscriptionRequest struct {
	Endpoint string           `json:"endpoint" binding:"required,url"`
	Keys     subscriptionKeys `json:"keys" binding:"required"`
}

// PutSubscription handles POST /api/push/subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "invalid subscription")
		return
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}
	if err := h.store.SavePushSubscription(c.Request.Context(), sub); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles DELETE /api/push/subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "endpoint is required")
		return
	}

	if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
