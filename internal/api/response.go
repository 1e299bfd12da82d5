package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/printroom/stockroom/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a domain error to a JSON error response. Unknown errors
// are logged and reported as 500.
func storeError(w http.ResponseWriter, err error, op string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrUserNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrDuplicateCode), errors.Is(err, model.ErrCountBelowZero):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("failed to "+op, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
