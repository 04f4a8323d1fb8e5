package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/model"
	"printfarm-backend/internal/parse"
	"printfarm-backend/internal/store"
)

type orderItemRequest struct {
	PrintableID json.RawMessage `json:"printable_id"`
	Qty         json.RawMessage `json:"qty"`
}

type createOrderRequest struct {
	Items json.RawMessage `json:"items"`
}

// decodeItems turns the loosely typed request items into store input.
// printable_id and qty may be numbers or numeric strings; qty defaults to 1.
func decodeItems(raw json.RawMessage) ([]store.OrderItemInput, error) {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return nil, &store.Error{Kind: store.ErrValidation, Code: store.CodeItemsRequired, Message: "items[] required"}
	}

	out := make([]store.OrderItemInput, 0, len(items))
	for _, rawItem := range items {
		var it orderItemRequest
		if err := json.Unmarshal(rawItem, &it); err != nil {
			return nil, &store.Error{Kind: store.ErrValidation, Code: store.CodeInvalidItem, Message: "Invalid item"}
		}
		pid, ok, err := parse.Int(it.PrintableID)
		if err != nil || !ok {
			return nil, &store.Error{Kind: store.ErrValidation, Code: store.CodeInvalidItem, Message: "Invalid item"}
		}
		qty, ok, err := parse.Int(it.Qty)
		if err != nil {
			return nil, &store.Error{Kind: store.ErrValidation, Code: store.CodeInvalidItem, Message: "Invalid item"}
		}
		if !ok {
			qty = 1
		}
		out = append(out, store.OrderItemInput{PrintableID: pid, Qty: int(qty)})
	}
	return out, nil
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "Invalid JSON")
		return
	}

	items, err := decodeItems(req.Items)
	if err != nil {
		h.writeError(c, err)
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), items)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": order.ID, "status": order.Status})
}

type orderResponse struct {
	ID                int64             `json:"id"`
	Status            model.OrderStatus `json:"status"`
	AssignedPrinterID *int64            `json:"assigned_printer_id"`
	Progress          int               `json:"progress"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

func newOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		Status:            o.Status,
		AssignedPrinterID: o.AssignedPrinterID,
		Progress:          o.Progress,
		CreatedAt:         formatTime(o.CreatedAt),
		UpdatedAt:         formatTime(o.UpdatedAt),
	}
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// GetOrderProgress handles GET /api/orders/:id/progress.
func (h *Handler) GetOrderProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.store.OrderProgress(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p.Progress, "timestamp": formatTime(p.Timestamp)})
}

type orderItemResponse struct {
	PrintableID int64  `json:"printable_id"`
	Qty         int    `json:"qty"`
	Name        string `json:"name,omitempty"`
	Color       string `json:"color,omitempty"`
}

type orderListEntry struct {
	orderResponse
	Items []orderItemResponse `json:"items"`
}

// ListOrders handles GET /api/orders. Items carry catalog names so the
// orders page needs no second round trip.
func (h *Handler) ListOrders(c *gin.Context) {
	filter := store.OrderFilter{Status: model.OrderStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		abortError(c, http.StatusBadRequest, store.CodeBadRequest, "unknown status filter")
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			abortError(c, http.StatusBadRequest, store.CodeBadRequest, "limit must be between 1 and 500")
			return
		}
		filter.Limit = n
	}

	ctx := c.Request.Context()
	orders, err := h.store.ListOrders(ctx, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	printables, err := h.store.ListPrintables(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	catalog := make(map[int64]model.Printable, len(printables))
	for _, p := range printables {
		catalog[p.ID] = p
	}

	out := make([]orderListEntry, 0, len(orders))
	for i := range orders {
		entry := orderListEntry{orderResponse: newOrderResponse(&orders[i])}
		entry.Items = make([]orderItemResponse, 0, len(orders[i].Items))
		for _, it := range orders[i].Items {
			p := catalog[it.PrintableID]
			entry.Items = append(entry.Items, orderItemResponse{
				PrintableID: it.PrintableID,
				Qty:         it.Qty,
				Name:        p.Name,
				Color:       p.Color,
			})
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
