package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/opencampus-sis/internal/rbac"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	PersonID string `json:"person_id,omitempty"` // student/teacher the account belongs to
}

// POST /users  {"username": ..., "password": ..., "role": ..., "person_id": ...}
func CreateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
			PersonID string `json:"person_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || len(req.Password) < 8 {
			http.Error(w, "username and a password of at least 8 characters required", http.StatusBadRequest)
			return
		}
		if !rbac.KnownRole(req.Role) {
			http.Error(w, "unknown role", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, err)
			return
		}
		u := userRow{ID: uuid.NewString(), Username: req.Username, Role: req.Role, PersonID: req.PersonID}
		personID := sql.NullString{String: req.PersonID, Valid: req.PersonID != ""}
		_, err = db.ExecContext(r.Context(), `INSERT INTO users (id, username, password_hash, role, person_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Username, string(hash), u.Role, personID, time.Now().Unix())
		if err != nil {
			http.Error(w, "username taken or invalid: "+err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// GET /users?role=
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		rows, err := db.QueryContext(r.Context(), `SELECT id, username, role, person_id FROM users
			WHERE ($1='' OR role=$1) ORDER BY username`, role)
		if err != nil {
			writeError(w, err)
			return
		}
		defer rows.Close()
		out := make([]userRow, 0)
		for rows.Next() {
			var u userRow
			var personID sql.NullString
			if err := rows.Scan(&u.ID, &u.Username, &u.Role, &personID); err != nil {
				writeError(w, err)
				return
			}
			u.PersonID = personID.String
			out = append(out, u)
		}
		if err := rows.Err(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
