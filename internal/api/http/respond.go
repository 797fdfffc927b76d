package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opencampus/opencampus-sis/internal/fieldvalid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 422 with per-field messages and
// everything else to a plain error body.
func writeError(w http.ResponseWriter, err error) {
	var fe fieldvalid.FieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fe})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
