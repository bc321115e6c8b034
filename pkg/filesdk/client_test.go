package filesdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTempAccessURL(t *testing.T) {
	t.Parallel()

	c := NewClient("https://files.example.com/")

	t.Run("object", func(t *testing.T) {
		u := c.TempAccessURL("b1", "dir/my file.txt", "a.b.c")
		require.Equal(t, "https://files.example.com/v1/files/b1/dir/my%20file.txt?jwt=a.b.c", u)
	})

	t.Run("without token", func(t *testing.T) {
		require.Equal(t, "https://files.example.com/v1/files/b1/x", c.TempAccessURL("b1", "x", ""))
	})

	t.Run("bucket archive", func(t *testing.T) {
		u := c.BucketArchiveURL("b1", "a.b.c")
		require.Equal(t, "https://files.example.com/v1/files/b1/?all=1&jwt=a.b.c", u)
	})
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantDesc string
	}{
		{"envelope", http.StatusBadRequest, `{"error":"invalid_token","error_description":"expired"}`, ErrorCodeInvalidToken, "expired"},
		{"validation", http.StatusBadRequest, `{"code":"validation_error","message":"bad fields"}`, ErrorCodeInvalidRequest, "bad fields"},
		{"plain text 404", http.StatusNotFound, "404 page not found", ErrorCodeNotFound, "HTTP 404: Not Found"},
		{"empty 502", http.StatusBadGateway, "", ErrorCodeServerError, "HTTP 502: Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.wantDesc, apiErr.Description)
		})
	}

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}

func TestAPIErrorIs(t *testing.T) {
	t.Parallel()

	err := error(&APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeNotFound, Description: "no such file"})
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, errors.Is(err, ErrForbidden))
	require.Equal(t, "custom", ErrForbidden.WithDescription("custom").Description)
	require.Equal(t, "permission denied", ErrForbidden.Description)
}

func TestClientRoundTrips(t *testing.T) {
	t.Parallel()

	lastModified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret-password" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_credentials","error_description":"nope"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(SessionResponse{AccessToken: "session-token", TokenType: "Bearer", UserID: "u1"})
	})
	mux.HandleFunc("GET /v1/records/{id}/tempfileaccess", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		require.Equal(t, "r1", r.PathValue("id"))
		require.Equal(t, "2", r.URL.Query().Get("days"))
		require.False(t, r.URL.Query().Has("minutes"))
		_ = json.NewEncoder(w).Encode(TempAccessResponse{JWT: "cap-token", Expiration: "Tue, 03 Mar 2026 12:00:00 GMT"})
	})
	mux.HandleFunc("GET /v1/files/{bucket}/{key...}", func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		require.Equal(t, "cap-token", r.URL.Query().Get("jwt"))
		w.Header().Set("Content-Type", "application/force-download")
		w.Header().Set("Content-Disposition", `attachment; filename="`+r.PathValue("key")+`"`)
		w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
		_, _ = io.WriteString(w, "payload")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := NewClient(srv.URL)

	_, err := c.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := c.Login(ctx, "alice", "secret-password")
	require.NoError(t, err)
	require.Equal(t, "session-token", s.AccessToken())
	require.Equal(t, "u1", s.UserID())

	ta, err := s.IssueTempAccess(ctx, "r1", 2, -1)
	require.NoError(t, err)
	require.Equal(t, "cap-token", ta.JWT)

	dl, err := c.DownloadObject(ctx, "b1", "report.csv", DownloadOptions{JWT: ta.JWT})
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
	require.Equal(t, "report.csv", dl.Filename)
	require.Equal(t, "application/force-download", dl.ContentType)
	require.True(t, lastModified.Equal(dl.LastModified))
}

func TestSessionExpired(t *testing.T) {
	t.Parallel()

	c := NewClient("http://localhost")
	require.False(t, c.NewSessionFromToken("t", time.Time{}).Expired())
	require.True(t, c.NewSessionFromToken("t", time.Now().Add(-time.Minute)).Expired())
	require.False(t, c.NewSessionFromToken("t", time.Now().Add(time.Minute)).Expired())
}
