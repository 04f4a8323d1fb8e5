package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/store"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeError maps store errors onto HTTP responses. Conflicts are client
// errors on this API and share 400 with validation failures.
func (h *Handler) writeError(c *gin.Context, err error) {
	var e *store.Error
	if errors.As(err, &e) {
		switch {
		case errors.Is(e, store.ErrNotFound):
			abortError(c, http.StatusNotFound, e.Code, e.Message)
		default:
			abortError(c, http.StatusBadRequest, e.Code, e.Message)
		}
		return
	}

	h.log.Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	abortError(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
