package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/dispatch"
	"printfarm-backend/internal/model"
	"printfarm-backend/internal/parse"
	"printfarm-backend/internal/store"
)

type heartbeatRequest struct {
	PrinterID json.RawMessage `json:"printer_id"`
	Name      string          `json:"name" binding:"max=128"`
	Status    string          `json:"status" binding:"max=16"`
	Progress  parse.Number    `json:"progress"`
}

type heartbeatResponse struct {
	PrinterID   int64              `json:"printer_id"`
	Instruction *store.Instruction `json:"instruction,omitempty"`
}

// Heartbeat handles POST /api/printers/ping.
func (h *Handler) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := bindJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "Invalid JSON")
		return
	}

	hb := dispatch.HeartbeatRequest{
		Name:   req.Name,
		Status: model.PrinterStatus(req.Status),
	}

	// An id that does not parse is treated like an unknown one.
	id, ok, err := parse.Int(req.PrinterID)
	if err != nil {
		h.log.Warnw("unparseable printer_id in heartbeat", "printer_id", string(req.PrinterID))
	} else if ok && id != 0 {
		hb.PrinterID = &id
	}
	if req.Progress.Set {
		pct := int(req.Progress.Value)
		hb.Progress = &pct
	}

	res, err := h.svc.Heartbeat(c.Request.Context(), hb)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, heartbeatResponse{
		PrinterID:   res.Printer.ID,
		Instruction: res.Instruction,
	})
}

type printerResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	CurrentOrderID  *int64  `json:"current_order_id"`
	LastHeartbeatAt *string `json:"last_heartbeat_at"`
}

// ListPrinters handles GET /api/printers.
func (h *Handler) ListPrinters(c *gin.Context) {
	printers, err := h.store.ListPrinters(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]printerResponse, 0, len(printers))
	for _, p := range printers {
		r := printerResponse{
			ID:             p.ID,
			Name:           p.Name,
			Status:         string(p.Status),
			CurrentOrderID: p.CurrentOrderID,
		}
		if p.LastHeartbeatAt != nil {
			ts := formatTime(*p.LastHeartbeatAt)
			r.LastHeartbeatAt = &ts
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, gin.H{"printers": out})
}
