package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/printroom/stockroom/internal/export"
	"github.com/printroom/stockroom/internal/label"
	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Code string `json:"code"`
	model.ItemDetails
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code := strings.TrimSpace(req.Code)
	details := req.ItemDetails.Trim()
	if err := model.ValidateNewItem(code, details); err != nil {
		storeError(w, err, "create item")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, code, details)
	if err != nil {
		storeError(w, err, "create item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item created", "user", claims.Username, "code", item.Code, "name", item.Name)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{code}. It doubles as scan-to-lookup.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{code}. Only the descriptive fields change.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req model.ItemDetails
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	details := req.Trim()
	if err := details.Validate(); err != nil {
		storeError(w, err, "update item")
		return
	}

	if err := store.UpdateItemDetails(r.Context(), h.DB, code, details); err != nil {
		storeError(w, err, "update item")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, code)
	if err != nil {
		storeError(w, err, "update item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item updated", "user", claims.Username, "code", code)
	jsonResponse(w, http.StatusOK, item)
}

// Label handles GET /api/items/{code}/label.
func (h *ItemsHandler) Label(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}

	data, err := label.Render(*item)
	if err != nil {
		slog.Error("failed to render label", "code", item.Code, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render label")
		return
	}

	w.Header().Set("Content-Type", label.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}

// Export handles GET /api/export.
func (h *ItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "export items")
		return
	}
	writeExport(w, items, time.Now())

	claims := GetClaims(r.Context())
	slog.Info("inventory exported", "user", claims.Username, "items", len(items))
}

func (h *ItemsHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("code"))
	if err != nil {
		storeError(w, err, "get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, model.ErrNotFound.Error())
		return nil, false
	}
	return item, true
}

// writeExport streams the workbook as an attachment.
func writeExport(w http.ResponseWriter, items []model.Item, now time.Time) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	if err := export.WriteInventory(w, items); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
