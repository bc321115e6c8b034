package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

// OptionalAuthn attaches the session principal when an Authorization header
// is present. Requests without one continue anonymously; a header that does
// not carry a valid session token is rejected with 401.
func OptionalAuthn(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			authn(v, next, w, r, authz)
		})
	}
}

// RequireAuthn is OptionalAuthn without the anonymous path.
func RequireAuthn(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authn(v, next, w, r, r.Header.Get("Authorization"))
		})
	}
}

func authn(v jwtx.Verifier, next http.Handler, w http.ResponseWriter, r *http.Request, authz string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !strings.HasPrefix(authz, "Bearer ") {
		writeBearerError(w, "missing bearer token")
		return
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

	claims, err := v.VerifySession(raw)
	if err != nil {
		writeBearerError(w, "token verification failed")
		log.Warn("session verify failed", "err", err)
		return
	}

	next.ServeHTTP(w, r.WithContext(contextWithSession(ctx, claims)))
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": desc,
	})
}
