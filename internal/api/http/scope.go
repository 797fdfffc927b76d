package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencampus/opencampus-sis/internal/auth"
)

// OwnStudent reports whether the {studentID} a route targets is the
// student record linked to the calling account. Used with
// rbac.RequireOwnerOr so view-own permissions stay scoped to the owner.
func OwnStudent(r *http.Request) bool {
	person := auth.PersonFromContext(r.Context())
	return person != "" && chi.URLParam(r, "studentID") == person
}
