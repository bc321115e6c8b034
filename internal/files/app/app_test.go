package app

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.SecretKey = "app-test-secret-0123456789"
	cfg.BootstrapToken = "bootstrap"
	cfg.DatabaseFile = ":memory:"
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.BlobRoot = filepath.Join(dir, "blobs")
	cfg.LogLevel = "error"
	return cfg
}

func TestNew_WiresFullFlow(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := filesdk.NewClient(srv.URL)

	_, err = client.CreateUser(ctx, "bootstrap", filesdk.CreateUserRequest{
		Username: "alice",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	sess, err := client.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	rec, err := sess.CreateRecord(ctx, filesdk.CreateRecordRequest{Title: "results"})
	require.NoError(t, err)

	_, err = sess.Upload(ctx, rec.BucketID, "data/readings.csv", "text/csv", strings.NewReader("t,v\n1,2\n"))
	require.NoError(t, err)

	access, err := sess.IssueTempAccess(ctx, rec.ID, -1, -1)
	require.NoError(t, err)
	require.NotEmpty(t, access.JWT)

	dl, err := client.DownloadObject(ctx, rec.BucketID, "data/readings.csv", filesdk.DownloadOptions{JWT: access.JWT})
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	require.Equal(t, "t,v\n1,2\n", string(body))
	require.Equal(t, "readings.csv", dl.Filename)

	health, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}

func TestNew_EphemeralSecretInDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.SecretKey = ""

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	require.NotNil(t, application.signer)
	require.NotNil(t, application.verifier)
}

func TestNew_BadBlobRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlobRoot = ""
	cfg.BlobDriver = "fs"

	_, err := New(cfg)
	require.Error(t, err)
}
