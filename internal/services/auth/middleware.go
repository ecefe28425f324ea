// filepath: internal/services/auth/middleware.go
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// writeError sends a JSON error response.
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Middleware provides authentication middleware.
type Middleware struct {
	User  services.UserService
	Token TokenService
}

// NewMiddleware creates a new instance of Middleware.
func NewMiddleware(user services.UserService, token TokenService) *Middleware {
	return &Middleware{
		User:  user,
		Token: token,
	}
}

// Identify attaches the caller to the request context when an Authorization header is
// present. Requests without one pass through anonymously; bad credentials are rejected.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		var (
			user *models.User
			err  error
		)
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			user, err = m.Token.ValidateAccessToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Log.Warnf("Identify: Invalid Bearer token: %v", err)
				if strings.Contains(err.Error(), "expired") {
					writeError(w, http.StatusUnauthorized, "Token expired")
				} else {
					writeError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}
		case strings.HasPrefix(authHeader, "Basic "):
			email, password, ok := r.BasicAuth()
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid Basic Auth header")
				return
			}
			user, err = m.validateBasicAuth(r, email, password)
			if err != nil {
				logging.Log.Warnf("Identify: Invalid Basic Auth: %v", err)
				writeError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
		default:
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireUser rejects anonymous requests. It must run after Identify.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="adreel", Bearer realm="adreel"`)
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateBasicAuth checks email/password against the database.
func (m *Middleware) validateBasicAuth(r *http.Request, email, password string) (*models.User, error) {
	user, err := m.User.GetUserByEmail(r.Context(), email)
	if err != nil {
		return nil, fmt.Errorf("user '%s' not found", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("password comparison failed for user '%s'", email)
	}
	return user, nil
}

// RequireAdmin only lets through callers whose email is in admins. It must run
// after Identify. An empty list locks the wrapped routes for everyone.
func (m *Middleware) RequireAdmin(admins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(admins))
	for _, email := range admins {
		allowed[strings.ToLower(strings.TrimSpace(email))] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				logging.Log.Warnf("RequireAdmin: No user found in context for %s", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			if !allowed[strings.ToLower(user.Email)] {
				logging.Log.Warnf("RequireAdmin: Access DENIED for user '%s' on %s", user.Email, r.URL.Path)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
