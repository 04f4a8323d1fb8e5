package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/parse"
	"printfarm-backend/internal/store"
)

type completeRequest struct {
	PrinterID json.RawMessage `json:"printer_id"`
}

// CompleteJob handles POST /api/jobs/:id/complete.
func (h *Handler) CompleteJob(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req completeRequest
	if err := bindJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "Invalid JSON")
		return
	}

	printerID, present, err := parse.Int(req.PrinterID)
	if err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "printer_id must be an integer")
		return
	}
	if !present {
		printerID = 0
	}

	if _, err := h.svc.Complete(c.Request.Context(), orderID, printerID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// pathID reads a positive integer path parameter. Anything else is a 404,
// since no such resource can exist.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortError(c, http.StatusNotFound, store.CodeNotFound, "")
		return 0, false
	}
	return id, true
}
