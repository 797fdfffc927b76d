package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/opencampus-sis/internal/rbac"
)

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub      string `json:"sub"`
	Role     string `json:"role"`
	PersonID string `json:"person_id,omitempty"` // student/teacher record the account is linked to
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role, personID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:      sub,
		Role:     role,
		PersonID: personID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "opencampus-sis",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}

// POST /auth/login  { "username": "...", "password": "..." }
// Role comes from the users table, never from the request.
func LoginHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var id, hash, role string
		var personID sql.NullString
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role, person_id FROM users WHERE username=$1`, req.Username).
			Scan(&id, &hash, &role, &personID)
		if err != nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if !rbac.KnownRole(role) {
			http.Error(w, "role not recognized", http.StatusForbidden)
			return
		}
		tok, err := a.IssueJWT(id, role, personID.String)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware validates the bearer token and places subject and role in
// the request context for rbac checks. With trustClaimRole off, the role is
// re-read from the users table on every request so a role change or a
// deleted account takes effect before the token expires.
func JWTMiddleware(a *AuthService, db *sql.DB, trustClaimRole bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			role, person := c.Role, c.PersonID
			if !trustClaimRole {
				var personID sql.NullString
				err := db.QueryRowContext(r.Context(),
					`SELECT role, person_id FROM users WHERE id=$1`, c.Sub).Scan(&role, &personID)
				if err != nil {
					http.Error(w, "unknown subject", http.StatusUnauthorized)
					return
				}
				person = personID.String
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = WithPerson(ctx, person)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type ctxKey string

const (
	ctxKeySub    ctxKey = "sub"
	ctxKeyPerson ctxKey = "person"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithPerson attaches the student/teacher record the account is linked to.
// Ownership checks compare this against the record a request targets.
func WithPerson(ctx context.Context, personID string) context.Context {
	return context.WithValue(ctx, ctxKeyPerson, personID)
}

func PersonFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPerson); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
