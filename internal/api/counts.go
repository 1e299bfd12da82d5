package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/printroom/stockroom/internal/count"
)

// CountsHandler handles the bulk count endpoints.
type CountsHandler struct {
	Counts *count.Manager
}

type countResponse struct {
	ID      string        `json:"id"`
	Entries []countEntry  `json:"entries"`
	Tallies []count.Tally `json:"tallies"`
}

type countEntry struct {
	count.Entry
	Label string `json:"label"`
}

type scanRequest struct {
	Code string `json:"code"`
}

func newCountResponse(s *count.Session) countResponse {
	resp := countResponse{ID: s.ID, Entries: []countEntry{}, Tallies: s.Tallies()}
	for _, e := range s.Entries() {
		resp.Entries = append(resp.Entries, countEntry{Entry: e, Label: e.Label()})
	}
	return resp
}

// Create handles POST /api/counts.
func (h *CountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Counts.Create(GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusCreated, newCountResponse(s))
}

// Get handles GET /api/counts/{id}.
func (h *CountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, newCountResponse(s))
}

// Cancel handles DELETE /api/counts/{id}.
func (h *CountsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.Counts.Discard(r.PathValue("id")) {
		jsonError(w, http.StatusNotFound, "count session not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "count cancelled"})
}

// Scan handles POST /api/counts/{id}/scans.
func (h *CountsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		jsonError(w, http.StatusBadRequest, "code is required")
		return
	}

	if _, err := s.Scan(r.Context(), code); err != nil {
		countError(w, err, "record scan")
		return
	}
	jsonResponse(w, http.StatusOK, newCountResponse(s))
}

// RemoveScan handles DELETE /api/counts/{id}/scans/{index}.
func (h *CountsHandler) RemoveScan(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid scan index")
		return
	}
	if err := s.RemoveEntry(index); err != nil {
		countError(w, err, "remove scan")
		return
	}
	jsonResponse(w, http.StatusOK, newCountResponse(s))
}

// Apply handles POST /api/counts/{id}/apply.
func (h *CountsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	tallies := s.Tallies()
	if err := h.Counts.Apply(r.Context(), s); err != nil {
		countError(w, err, "apply count")
		return
	}

	slog.Info("count applied", "user", GetClaims(r.Context()).Username, "id", s.ID, "items", len(tallies))
	jsonResponse(w, http.StatusOK, map[string]any{"applied": tallies})
}

func (h *CountsHandler) session(w http.ResponseWriter, r *http.Request) (*count.Session, bool) {
	s := h.Counts.Get(r.PathValue("id"))
	if s == nil {
		jsonError(w, http.StatusNotFound, "count session not found")
		return nil, false
	}
	return s, true
}

func countError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, count.ErrNoEntry), errors.Is(err, count.ErrSessionClosed):
		jsonError(w, http.StatusNotFound, err.Error())
	default:
		storeError(w, err, op)
	}
}
