package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/printroom/stockroom/internal/export"
	"github.com/printroom/stockroom/internal/label"
	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
)

// itemForm keeps the add-item form values across a failed submit.
type itemForm struct {
	Code string
	model.ItemDetails
}

type itemsPage struct {
	PageData
	Items       []model.Item
	Form        itemForm
	LookupCode  string
	LookupError string
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	s.renderItems(w, r, http.StatusOK, itemsPage{})
}

// ItemLookup handles GET /items/lookup?code=. A scanner typing into the
// lookup field lands on the item page.
func (s *Server) ItemLookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		http.Redirect(w, r, "/items", http.StatusSeeOther)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, code)
	if err != nil {
		slog.Error("failed to look up item", "code", code, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		s.renderItems(w, r, http.StatusNotFound, itemsPage{LookupCode: code, LookupError: "Item not found!"})
		return
	}

	http.Redirect(w, r, itemPath(code), http.StatusSeeOther)
}

// ItemCreateSubmit handles POST /items (admin).
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	form := itemForm{
		Code: strings.TrimSpace(r.FormValue("code")),
		ItemDetails: model.ItemDetails{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Location:    r.FormValue("location"),
		}.Trim(),
	}

	err := model.ValidateNewItem(form.Code, form.ItemDetails)
	if err == nil {
		_, err = store.CreateItem(r.Context(), s.DB, form.Code, form.ItemDetails)
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		s.renderItems(w, r, http.StatusBadRequest, itemsPage{Form: form, PageData: PageData{Error: "Please fill in all fields."}})
		return
	case errors.Is(err, model.ErrDuplicateCode):
		s.renderItems(w, r, http.StatusConflict, itemsPage{Form: form, PageData: PageData{Error: "Barcode already exists!"}})
		return
	case err != nil:
		slog.Error("failed to create item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item created", "user", claims.Username, "code", form.Code, "name", form.Name)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

func (s *Server) renderItems(w http.ResponseWriter, r *http.Request, status int, data itemsPage) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
	}

	msg := data.Error
	data.PageData = s.page(r, "Items")
	data.Error = msg
	data.Items = items
	s.Templates.RenderStatus(w, status, "items.html", &data)
}

type itemDetailPage struct {
	PageData
	Item *model.Item
}

// ItemDetailPage handles GET /items/{code}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}

	data := itemDetailPage{PageData: s.page(r, item.Name), Item: item}
	if r.URL.Query().Get("saved") == "1" {
		data.Success = "Item saved."
	}
	s.Templates.Render(w, "item_detail.html", &data)
}

// ItemUpdateSubmit handles POST /items/{code} (admin). The scan code is
// read-only.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}

	details := model.ItemDetails{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}.Trim()

	if err := details.Validate(); err != nil {
		edited := *item
		edited.Name, edited.Description, edited.Location = details.Name, details.Description, details.Location
		data := itemDetailPage{PageData: s.page(r, item.Name), Item: &edited}
		data.Error = "Please fill in all fields."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_detail.html", &data)
		return
	}

	if err := store.UpdateItemDetails(r.Context(), s.DB, item.Code, details); err != nil {
		slog.Error("failed to update item", "code", item.Code, "error", err)
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}

	slog.Info("item updated", "user", claims.Username, "code", item.Code)
	http.Redirect(w, r, itemPath(item.Code)+"?saved=1", http.StatusSeeOther)
}

// ItemLabel handles GET /items/{code}/label.png.
func (s *Server) ItemLabel(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}

	data, err := label.Render(*item)
	if err != nil {
		slog.Error("failed to render label", "code", item.Code, "error", err)
		http.Error(w, "failed to render label", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", label.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write label response", "error", err)
	}
}

// Export handles GET /export (admin).
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	if err := export.WriteInventory(w, items); err != nil {
		slog.Error("failed to write export", "error", err)
		return
	}
	slog.Info("inventory exported", "user", GetWebClaims(r.Context()).Username, "items", len(items))
}

func (s *Server) lookupItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, err := store.GetItem(r.Context(), s.DB, r.PathValue("code"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil, false
	}
	return item, true
}

func itemPath(code string) string {
	return "/items/" + url.PathEscape(code)
}
