package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/model"
	"printfarm-backend/internal/store"
)

type printableResponse struct {
	ID         int64   `json:"id"`
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	PriceCents int     `json:"price_cents"`
	STLURL     *string `json:"stl_url"`
}

func (h *Handler) newPrintableResponse(p *model.Printable) printableResponse {
	r := printableResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Color:      p.Color,
		PriceCents: p.PriceCents,
	}
	if p.STLPath != "" {
		u := h.stlURL(p.ID)
		r.STLURL = &u
	}
	return r
}

// ListPrintables handles GET /api/printables.
func (h *Handler) ListPrintables(c *gin.Context) {
	printables, err := h.store.ListPrintables(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]printableResponse, 0, len(printables))
	for i := range printables {
		out = append(out, h.newPrintableResponse(&printables[i]))
	}
	c.JSON(http.StatusOK, gin.H{"printables": out})
}

// GetPrintable handles GET /api/printables/:id.
func (h *Handler) GetPrintable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPrintable(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.newPrintableResponse(p))
}

// DownloadSTL handles GET /api/printables/:id/stl.
func (h *Handler) DownloadSTL(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPrintable(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if p.STLPath == "" {
		abortError(c, http.StatusNotFound, store.CodeNotFound, "no STL file for this printable")
		return
	}

	full, ok := h.mediaPath(p.STLPath)
	if !ok {
		abortError(c, http.StatusNotFound, store.CodeNotFound, "no STL file for this printable")
		return
	}
	if info, err := os.Stat(full); err != nil || info.IsDir() {
		abortError(c, http.StatusNotFound, store.CodeNotFound, "no STL file for this printable")
		return
	}
	c.FileAttachment(full, path.Base(filepath.ToSlash(p.STLPath)))
}

// mediaPath resolves rel under the media root, refusing paths that escape it.
func (h *Handler) mediaPath(rel string) (string, bool) {
	root, err := filepath.Abs(h.mediaRoot)
	if err != nil {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

// stlURL links to the STL download. Without a configured public base URL
// the link is relative; request headers never feed into it since catalog
// responses are cached and shared between clients.
func (h *Handler) stlURL(id int64) string {
	return h.baseURL + "/api/printables/" + strconv.FormatInt(id, 10) + "/stl"
}
