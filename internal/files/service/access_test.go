package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, d *ObjectDownload) string {
	t.Helper()
	defer d.Body.Close()
	b, err := io.ReadAll(d.Body)
	require.NoError(t, err)
	return string(b)
}

func TestFetchObjectWithToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	files := map[string]string{"myfile1.dat": "contents1", "myfile2.dat": "contents2"}
	rec := e.record(t, owner, files)
	token := e.issue(t, owner, rec.ID, 30, 0)

	for key, want := range files {
		t.Run(key, func(t *testing.T) {
			d, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: key, Token: token})
			require.NoError(t, err)
			require.Equal(t, domain.DecisionGrantedByToken, d.Decision)
			require.Equal(t, want, readAll(t, d))
		})
	}

	events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, ev := range events {
		require.Equal(t, domain.DecisionGrantedByToken, ev.Decision)
		require.NotEmpty(t, ev.TokenID)
		require.Empty(t, ev.UserID)
		require.False(t, ev.Archive)
	}
}

func TestFetchObjectWithoutToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	other := e.user(t, "other")
	rec := e.record(t, owner, map[string]string{"a.txt": "A"})

	t.Run("owner", func(t *testing.T) {
		d, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Principal: owner})
		require.NoError(t, err)
		require.Equal(t, domain.DecisionGrantedByOwnership, d.Decision)
		require.Equal(t, "A", readAll(t, d))
	})

	t.Run("anonymous is told not found", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt"})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("signed in non owner is forbidden", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Principal: other})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("open access record is public", func(t *testing.T) {
		require.NoError(t, e.records.SetOpenAccess(ctx, owner, rec.ID, true))
		t.Cleanup(func() { _ = e.records.SetOpenAccess(ctx, owner, rec.ID, false) })

		d, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt"})
		require.NoError(t, err)
		require.Equal(t, domain.DecisionGrantedByOwnership, d.Decision)
		require.Equal(t, "A", readAll(t, d))
	})
}

func TestFetchObjectResolution(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, map[string]string{"a.txt": "v1"})
	token := e.issue(t, owner, rec.ID, 30, 0)

	e.clock.Advance(time.Minute)
	v2, err := e.objects.Upload(ctx, UploadRequest{
		BucketID: rec.BucketID, Key: "a.txt", Body: strings.NewReader("v2"), Principal: owner,
	})
	require.NoError(t, err)

	versions, err := e.objects.Versions(ctx, owner, rec.BucketID, "a.txt")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	v1 := versions[1]

	t.Run("head by default", func(t *testing.T) {
		d, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Token: token})
		require.NoError(t, err)
		require.Equal(t, v2.VersionID, d.Object.VersionID)
		require.Equal(t, "v2", readAll(t, d))
	})

	t.Run("explicit version", func(t *testing.T) {
		d, err := e.gate.FetchObject(ctx, ObjectRequest{
			BucketID: rec.BucketID, Key: "a.txt", VersionID: v1.VersionID, Token: token,
		})
		require.NoError(t, err)
		require.Equal(t, "v1", readAll(t, d))
	})

	t.Run("uppercase bucket id", func(t *testing.T) {
		d, err := e.gate.FetchObject(ctx, ObjectRequest{
			BucketID: strings.ToUpper(rec.BucketID), Key: "a.txt", Token: token,
		})
		require.NoError(t, err)
		require.Equal(t, domain.DecisionGrantedByToken, d.Decision)
		_ = readAll(t, d)
	})

	notFound := []ObjectRequest{
		{BucketID: rec.BucketID, Key: "missing.txt", Token: token},
		{BucketID: rec.BucketID, Key: "a.txt", VersionID: "not-a-uuid", Token: token},
		{BucketID: rec.BucketID, Key: "a.txt", VersionID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427", Token: token},
		{BucketID: "not-a-bucket", Key: "a.txt", Token: token},
		{BucketID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427", Key: "a.txt", Token: token},
	}
	for _, req := range notFound {
		_, err := e.gate.FetchObject(ctx, req)
		require.ErrorIs(t, err, ErrNotFound, "%+v", req)
	}
}

func TestFetchObjectTokenScope(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	other := e.user(t, "other")
	recA := e.record(t, owner, map[string]string{"a.txt": "A"})
	recB := e.record(t, owner, map[string]string{"b.txt": "B"})
	tokenA := e.issue(t, owner, recA.ID, 30, 0)

	reqB := func(p domain.Principal) ObjectRequest {
		return ObjectRequest{BucketID: recB.BucketID, Key: "b.txt", Token: tokenA, Principal: p}
	}

	t.Run("anonymous with wrong scope", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, reqB(domain.Principal{}))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong scope falls back to ownership", func(t *testing.T) {
		d, err := e.gate.FetchObject(ctx, reqB(owner))
		require.NoError(t, err)
		require.Equal(t, domain.DecisionGrantedByOwnership, d.Decision)
		require.Equal(t, "B", readAll(t, d))
	})

	t.Run("wrong scope and not owner", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, reqB(other))
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("wrong scope on open access record", func(t *testing.T) {
		require.NoError(t, e.records.SetOpenAccess(ctx, owner, recB.ID, true))
		t.Cleanup(func() { _ = e.records.SetOpenAccess(ctx, owner, recB.ID, false) })

		// No session: the mismatch alone denies, even for public files.
		_, err := e.gate.FetchObject(ctx, reqB(domain.Principal{}))
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFetchObjectInvalidToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, map[string]string{"a.txt": "A"})

	t.Run("garbage never falls back to the session", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, ObjectRequest{
			BucketID: rec.BucketID, Key: "a.txt", Token: "garbage", Principal: owner,
		})
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expiry", func(t *testing.T) {
		token := e.issue(t, owner, rec.ID, 0, 1)

		d, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Token: token})
		require.NoError(t, err)
		_ = readAll(t, d)

		e.clock.Advance(59 * time.Second)
		d, err = e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Token: token})
		require.NoError(t, err)
		_ = readAll(t, d)

		e.clock.Advance(time.Second)
		_, err = e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Token: token})
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("zero lifetime", func(t *testing.T) {
		token := e.issue(t, owner, rec.ID, 0, 0)
		_, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a.txt", Token: token})
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing object wins over invalid token", func(t *testing.T) {
		_, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "nope", Token: "garbage"})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
