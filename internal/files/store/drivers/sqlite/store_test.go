package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/internal/files/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func seedRecord(t *testing.T, s store.Store) (domain.Record, domain.Bucket) {
	t.Helper()
	ctx := context.Background()

	u := domain.User{ID: "u1", Username: "alice", PasswordHash: "x", CreatedAt: epoch, UpdatedAt: epoch}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	rec := domain.Record{ID: "r1", OwnerID: u.ID, Title: "dataset", CreatedAt: epoch, UpdatedAt: epoch}
	b := domain.Bucket{ID: "b1", RecordID: rec.ID, CreatedAt: epoch}
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Records().CreateRecord(ctx, rec); err != nil {
			return err
		}
		return tx.Buckets().CreateBucket(ctx, b)
	}))
	return rec, b
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := domain.User{ID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: epoch, UpdatedAt: epoch}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := u
	dup.ID = "u2"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
}

func TestRecordsAndBuckets(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	rec, b := seedRecord(t, s)

	got, err := s.Records().GetRecordByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec, got)
	require.False(t, got.OpenAccess)

	later := epoch.Add(time.Hour)
	require.NoError(t, s.Records().UpdateOpenAccess(ctx, rec.ID, true, later))
	got, err = s.Records().GetRecordByID(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.OpenAccess)
	require.Equal(t, later, got.UpdatedAt)

	require.ErrorIs(t, s.Records().UpdateOpenAccess(ctx, "missing", true, later), store.ErrNotFound)

	byRecord, err := s.Buckets().GetBucketByRecordID(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, b, byRecord)

	t.Run("one bucket per record", func(t *testing.T) {
		err := s.Buckets().CreateBucket(ctx, domain.Bucket{ID: "b2", RecordID: rec.ID, CreatedAt: epoch})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("record without bucket", func(t *testing.T) {
		orphan := domain.Record{ID: "r2", OwnerID: rec.OwnerID, Title: "t", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, s.Records().CreateRecord(ctx, orphan))

		_, err := s.Buckets().GetBucketByRecordID(ctx, orphan.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			r3 := domain.Record{ID: "r3", OwnerID: rec.OwnerID, Title: "t", CreatedAt: epoch, UpdatedAt: epoch}
			if err := tx.Records().CreateRecord(ctx, r3); err != nil {
				return err
			}
			// Bucket id collides with b1.
			return tx.Buckets().CreateBucket(ctx, domain.Bucket{ID: b.ID, RecordID: r3.ID, CreatedAt: epoch})
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.Records().GetRecordByID(ctx, "r3")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestObjectVersions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, b := seedRecord(t, s)

	put := func(version, key string, at time.Time) domain.Object {
		o := domain.Object{
			VersionID: version, BucketID: b.ID, Key: key, Size: 3,
			Checksum: "blake3:00", MimeType: "text/plain", BlobKey: version,
			CreatedAt: at, UpdatedAt: at,
		}
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Objects().CreateHeadVersion(ctx, o)
		}))
		return o
	}

	put("v1", "b.txt", epoch)
	put("v2", "a.txt", epoch.Add(time.Minute))
	put("v3", "b.txt", epoch.Add(2*time.Minute))

	head, err := s.Objects().GetHeadObject(ctx, b.ID, "b.txt")
	require.NoError(t, err)
	require.Equal(t, "v3", head.VersionID)
	require.True(t, head.IsHead)

	old, err := s.Objects().GetObjectVersion(ctx, b.ID, "b.txt", "v1")
	require.NoError(t, err)
	require.False(t, old.IsHead)

	_, err = s.Objects().GetObjectVersion(ctx, b.ID, "a.txt", "v1")
	require.ErrorIs(t, err, store.ErrNotFound)

	heads, err := s.Objects().ListHeadObjects(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, heads, 2)
	require.Equal(t, "a.txt", heads[0].Key)
	require.Equal(t, "b.txt", heads[1].Key)

	versions, err := s.Objects().ListVersions(ctx, b.ID, "b.txt")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, "v3", versions[0].VersionID)

	empty, err := s.Objects().ListHeadObjects(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestDownloadEvents(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	events := []domain.DownloadEvent{
		{ID: "e1", BucketID: "b1", VersionID: "v1", Key: "a", Size: 1, Decision: domain.DecisionGrantedByToken, TokenID: "jti", Archive: true, OccurredAt: epoch},
		{ID: "e2", BucketID: "b1", VersionID: "v2", Key: "b", Size: 2, Decision: domain.DecisionGrantedByOwnership, UserID: "u1", OccurredAt: epoch.Add(48 * time.Hour)},
		{ID: "e3", BucketID: "b2", VersionID: "v3", Key: "c", Size: 3, Decision: domain.DecisionGrantedByOwnership, OccurredAt: epoch},
	}
	for _, e := range events {
		require.NoError(t, s.DownloadEvents().CreateDownloadEvent(ctx, e))
	}

	got, err := s.DownloadEvents().ListDownloadEvents(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, events[:2], got)

	n, err := s.DownloadEvents().DeleteDownloadEventsBefore(ctx, epoch.Add(24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err = s.DownloadEvents().ListDownloadEvents(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "e2", got[0].ID)
}
