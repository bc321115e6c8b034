package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-test-secret-0123456789")

func sessionToken(t *testing.T, subject string) string {
	t.Helper()

	signer, err := jwtx.NewHS256Signer(secret)
	require.NoError(t, err)

	claims := jwtx.NewSessionClaims(subject, "alice", "", time.Hour, time.Now())
	tok, err := signer.Sign(&claims)
	require.NoError(t, err)
	return tok
}

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.UserIDFromContext(r.Context())
		if !ok {
			id = "anonymous"
		}
		_, _ = w.Write([]byte(id))
	})
}

func TestOptionalAuthn(t *testing.T) {
	verifier, err := jwtx.NewHS256Verifier(secret)
	require.NoError(t, err)

	h := httpx.Chain(whoAmI(), httpx.OptionalAuthn(verifier))

	t.Run("no header is anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, "user-1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("invalid session is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("non bearer scheme is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("alice", "secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuthn(t *testing.T) {
	verifier, err := jwtx.NewHS256Verifier(secret)
	require.NoError(t, err)

	h := httpx.Chain(whoAmI(), httpx.RequireAuthn(verifier))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "user-2"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-2", rec.Body.String())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Attachment(rec, "files.zip")
	require.Equal(t, "attachment; filename=files.zip", rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	httpx.Attachment(rec, "résumé.pdf")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "filename*=utf-8''")
}
