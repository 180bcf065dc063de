package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"picstream/internal/services"
)

const defaultLimit = 50

// writeJSON sends v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps business errors from the services layer onto HTTP
// statuses. Unrecognized errors are logged in full and surface as a bare
// 500 so internal detail never reaches the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusForbidden)
	case errors.Is(err, services.ErrEmailTaken):
		http.Error(w, "Email address already exists", http.StatusForbidden)
	case errors.Is(err, services.ErrUsernameTaken):
		http.Error(w, "User name already exists", http.StatusConflict)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		log.Error().Err(err).Msg("Unexpected service error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// pagination reads the offset and limit query parameters. Absent, malformed
// or negative values fall back to the defaults instead of erroring.
func pagination(r *http.Request) (offset, limit int) {
	offset, limit = 0, defaultLimit
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return offset, limit
}
