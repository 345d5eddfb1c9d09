package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
)

const AdminRole = "admin"

// Admin checks for the 'admin' role in the request's bearer token. With no
// token auth configured every request passes.
func Admin(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	if tokenAuth == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return chi.Chain(jwtauth.Verifier(tokenAuth), jwtauth.Authenticator, admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		isAdmin := false
		if rolesClaim, ok := claims["roles"].(string); ok {
			roles := strings.Split(rolesClaim, ",")
			for _, role := range roles {
				if strings.TrimSpace(role) == AdminRole {
					isAdmin = true
					break
				}
			}
		}

		if !isAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IssueToken signs an editor token carrying the admin role.
func IssueToken(tokenAuth *jwtauth.JWTAuth, subject string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"sub":   subject,
		"roles": AdminRole,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)
	_, token, err := tokenAuth.Encode(claims)
	return token, err
}
