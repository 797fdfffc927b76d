package http

import (
	"encoding/json"
	"net/http"

	"github.com/opencampus/opencampus-sis/internal/rbac"
	"github.com/opencampus/opencampus-sis/internal/settings"
)

// GET /settings
func GetSettingsHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := store.Load(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// PUT /settings
func UpdateSettingsHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap settings.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if snap.SchoolYear == "" {
			http.Error(w, "school_year required", http.StatusBadRequest)
			return
		}
		if err := store.Save(r.Context(), snap); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// MaintenanceGate refuses non-admin traffic while maintenance mode is on.
// The snapshot is loaded per request so flipping the toggle takes effect
// without a restart.
func MaintenanceGate(store *settings.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := store.Load(r.Context())
			if err != nil {
				http.Error(w, "settings unavailable", http.StatusServiceUnavailable)
				return
			}
			role := rbac.RoleFromContext(r.Context())
			if snap.MaintenanceMode && role != "superadmin" && role != "admin" {
				http.Error(w, "maintenance in progress", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParentPortalGate hides parent-facing reads while the portal is off.
func ParentPortalGate(store *settings.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := rbac.RoleFromContext(r.Context())
			if role != "parent" {
				next.ServeHTTP(w, r)
				return
			}
			snap, err := store.Load(r.Context())
			if err != nil {
				http.Error(w, "settings unavailable", http.StatusServiceUnavailable)
				return
			}
			if !snap.ParentPortal {
				http.Error(w, "parent portal disabled", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
