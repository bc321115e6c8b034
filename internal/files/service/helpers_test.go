package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store/drivers/sqlite"
	"github.com/aussiebroadwan/fileaccess/pkg/cryptox"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("service-test-secret-0123456789")

// testClock is a settable clock shared by every service of an env.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	clock   *testClock
	store   *sqlite.Store
	blobs   *blob.FSStore
	hasher  *cryptox.PasswordHasher
	signer  *jwtx.HS256Signer
	records *RecordService
	objects *ObjectService
	tokens  *TempAccessService
	gate    *AccessGate
	users   *UserService
	session *SessionService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testSecret, jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	perms := OwnerPermissions{}
	hasher := cryptox.NewPasswordHasher("pepper")

	return &env{
		clock:  clock,
		store:  st,
		blobs:  blobs,
		hasher: hasher,
		signer: signer,
		records: &RecordService{
			Store: st, Permissions: perms, Now: clock.Now,
		},
		objects: &ObjectService{
			Store: st, Blobs: blobs, Permissions: perms, Now: clock.Now, SpoolDir: t.TempDir(),
		},
		tokens: &TempAccessService{
			Store: st, Signer: signer, Permissions: perms, Now: clock.Now,
		},
		gate: &AccessGate{
			Store:              st,
			Blobs:              blobs,
			Verifier:           verifier,
			Permissions:        perms,
			Downloads:          &DownloadRecorder{Store: st, Now: clock.Now},
			ArchiveConcurrency: 2,
		},
		users: &UserService{
			Store: st, Hasher: hasher, BootstrapToken: "bootstrap", Now: clock.Now,
		},
		session: &SessionService{
			Store: st, Hasher: hasher, Signer: signer, Issuer: "fileaccess", TTL: time.Hour, Now: clock.Now,
		},
	}
}

func (e *env) user(t *testing.T, name string) domain.Principal {
	t.Helper()
	u, err := e.users.Create(context.Background(), "bootstrap", name, "password-"+name)
	require.NoError(t, err)
	return domain.Principal{UserID: u.ID, Username: u.Username}
}

func (e *env) record(t *testing.T, owner domain.Principal, files map[string]string) domain.RecordWithBucket {
	t.Helper()
	ctx := context.Background()

	rec, err := e.records.Create(ctx, owner, "dataset", false)
	require.NoError(t, err)

	for key, body := range files {
		_, err := e.objects.Upload(ctx, UploadRequest{
			BucketID:  rec.BucketID,
			Key:       key,
			Body:      bytes.NewBufferString(body),
			Principal: owner,
		})
		require.NoError(t, err)
	}
	return rec
}

func (e *env) issue(t *testing.T, owner domain.Principal, recordID string, days, minutes int) string {
	t.Helper()
	ta, err := e.tokens.Issue(context.Background(), recordID, owner, days, minutes)
	require.NoError(t, err)
	return ta.Token
}
