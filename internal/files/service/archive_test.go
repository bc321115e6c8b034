package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func TestFetchBucketArchive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, nil)

	files := []struct{ key, body string }{
		{"b/second.csv", "x,y\n1,2\n"},
		{"a.txt", strings.Repeat("a", 4096)},
		{"c.bin", "\x00\x01\x02"},
	}
	var newest time.Time
	for _, f := range files {
		e.clock.Advance(time.Minute)
		obj, err := e.objects.Upload(ctx, UploadRequest{
			BucketID: rec.BucketID, Key: f.key, Body: strings.NewReader(f.body), Principal: owner,
		})
		require.NoError(t, err)
		newest = obj.UpdatedAt
	}

	token := e.issue(t, owner, rec.ID, 30, 0)

	var buf bytes.Buffer
	info, err := e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID, Token: token}, &buf)
	require.NoError(t, err)
	require.Equal(t, 3, info.Entries)
	require.Equal(t, domain.DecisionGrantedByToken, info.Decision)
	require.True(t, newest.Equal(info.LastModified))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	want := map[string]string{}
	for _, f := range files {
		want[f.key] = f.body
	}
	wantOrder := []string{"a.txt", "b/second.csv", "c.bin"}
	for i, zf := range zr.File {
		require.Equal(t, wantOrder[i], zf.Name)
		require.Equal(t, zip.Store, zf.Method)

		rc, err := zf.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		require.Equal(t, want[zf.Name], string(got))
	}

	events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, ev := range events {
		require.Equal(t, wantOrder[i], ev.Key)
		require.True(t, ev.Archive)
		require.Equal(t, domain.DecisionGrantedByToken, ev.Decision)
	}
}

func TestFetchBucketEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, nil)
	token := e.issue(t, owner, rec.ID, 30, 0)

	var buf bytes.Buffer
	_, err := e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID, Token: token}, &buf)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, buf.Len())

	_, err = e.gate.FetchBucket(ctx, BucketRequest{BucketID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", Token: token}, &buf)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchBucketAuthorization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	other := e.user(t, "other")
	rec := e.record(t, owner, map[string]string{"a": "1", "b": "2"})
	elsewhere := e.record(t, owner, nil)
	foreign := e.issue(t, owner, elsewhere.ID, 30, 0)

	cases := []struct {
		name    string
		req     BucketRequest
		wantErr error
		want    domain.Decision
	}{
		{name: "owner session", req: BucketRequest{Principal: owner}, want: domain.DecisionGrantedByOwnership},
		{name: "anonymous", req: BucketRequest{}, wantErr: ErrNotFound},
		{name: "non owner", req: BucketRequest{Principal: other}, wantErr: ErrForbidden},
		{name: "foreign token anonymous", req: BucketRequest{Token: foreign}, wantErr: ErrNotFound},
		{name: "foreign token non owner", req: BucketRequest{Token: foreign, Principal: other}, wantErr: ErrForbidden},
		{name: "foreign token owner", req: BucketRequest{Token: foreign, Principal: owner}, want: domain.DecisionGrantedByOwnership},
		{name: "invalid token owner", req: BucketRequest{Token: "x.y.z", Principal: owner}, wantErr: ErrInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.BucketID = rec.BucketID

			var buf bytes.Buffer
			info, err := e.gate.FetchBucket(ctx, req, &buf)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Zero(t, buf.Len())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, info.Decision)
			require.Equal(t, 2, info.Entries)
		})
	}
}

func TestFetchBucketAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, map[string]string{"a": "1", "b": "2", "c": "3"})
	token := e.issue(t, owner, rec.ID, 30, 0)

	obj, err := e.store.Objects().GetHeadObject(ctx, rec.BucketID, "b")
	require.NoError(t, err)
	require.NoError(t, e.blobs.Delete(ctx, obj.BlobKey))

	var buf bytes.Buffer
	_, err = e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID, Token: token}, &buf)
	require.Error(t, err)
	require.Zero(t, buf.Len())

	events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
	require.NoError(t, err)
	require.Empty(t, events)
}

// refuseKey is the owner policy except that one key is never readable
// without a token.
type refuseKey struct {
	OwnerPermissions
	key string
}

func (p refuseKey) CanReadObject(pr domain.Principal, rec domain.Record, obj domain.Object) bool {
	return obj.Key != p.key && p.OwnerPermissions.CanReadObject(pr, rec, obj)
}

func TestFetchBucketSingleRefusedObject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	rec := e.record(t, owner, map[string]string{"a": "1", "b": "2", "c": "3"})
	token := e.issue(t, owner, rec.ID, 30, 0)
	e.gate.Permissions = refuseKey{key: "b"}

	_, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "b", Principal: owner})
	require.ErrorIs(t, err, ErrForbidden)

	dl, err := e.gate.FetchObject(ctx, ObjectRequest{BucketID: rec.BucketID, Key: "a", Principal: owner, HeadOnly: true})
	require.NoError(t, err)
	require.NoError(t, dl.Body.Close())

	t.Run("owner session", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID, Principal: owner}, &buf)
		require.ErrorIs(t, err, ErrForbidden)
		require.Zero(t, buf.Len())
	})

	t.Run("anonymous", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID}, &buf)
		require.ErrorIs(t, err, ErrNotFound)
		require.Zero(t, buf.Len())
	})

	events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
	require.NoError(t, err)
	require.Empty(t, events)

	t.Run("matching token skips the check", func(t *testing.T) {
		var buf bytes.Buffer
		info, err := e.gate.FetchBucket(ctx, BucketRequest{BucketID: rec.BucketID, Token: token}, &buf)
		require.NoError(t, err)
		require.Equal(t, 3, info.Entries)
		require.Equal(t, domain.DecisionGrantedByToken, info.Decision)

		events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
		require.NoError(t, err)
		require.Len(t, events, 3)
	})
}

func TestStatBucket(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.user(t, "owner")
	other := e.user(t, "other")
	rec := e.record(t, owner, map[string]string{"a": "1"})
	e.clock.Advance(time.Hour)
	obj, err := e.objects.Upload(ctx, UploadRequest{
		BucketID: rec.BucketID, Key: "z", Body: strings.NewReader("zz"), Principal: owner,
	})
	require.NoError(t, err)

	info, err := e.gate.StatBucket(ctx, BucketRequest{BucketID: rec.BucketID, Principal: owner})
	require.NoError(t, err)
	require.Equal(t, 2, info.Entries)
	require.True(t, obj.UpdatedAt.Equal(info.LastModified))
	require.Equal(t, domain.DecisionGrantedByOwnership, info.Decision)

	_, err = e.gate.StatBucket(ctx, BucketRequest{BucketID: rec.BucketID, Principal: other})
	require.ErrorIs(t, err, ErrForbidden)

	events, err := e.gate.Downloads.Events(ctx, rec.BucketID)
	require.NoError(t, err)
	require.Empty(t, events)
}
