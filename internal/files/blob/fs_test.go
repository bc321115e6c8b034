package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	"github.com/stretchr/testify/require"
)

func TestFSStore(t *testing.T) {
	root := t.TempDir()
	s, err := blob.NewFSStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	const key = "3f1c1c2e-bucket/9b0e-version"

	t.Run("put and open", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key, strings.NewReader("hello"), 5))

		rc, err := s.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "hello", string(b))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key, strings.NewReader("bye"), 3))

		rc, err := s.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "bye", string(b))
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		err := s.Put(ctx, "short", strings.NewReader("abc"), 10)
		require.Error(t, err)

		_, err = s.Open(ctx, "short")
		require.ErrorIs(t, err, blob.ErrNotFound)

		tmp, err := os.ReadDir(filepath.Join(root, "tmp"))
		require.NoError(t, err)
		require.Empty(t, tmp)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, key))

		_, err := s.Open(ctx, key)
		require.ErrorIs(t, err, blob.ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, key), blob.ErrNotFound)

		shards, err := os.ReadDir(filepath.Join(root, "blobs"))
		require.NoError(t, err)
		require.Empty(t, shards)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
	})
}

func TestValidateKey(t *testing.T) {
	valid := []string{"a", "bucket/version", "a.b-c_d/e"}
	for _, k := range valid {
		require.NoError(t, blob.ValidateKey(k), k)
	}

	invalid := []string{"", "/abs", "trailing/", "a//b", "../up", "a/../b", "sp ace", "nul\x00", strings.Repeat("a", 513)}
	for _, k := range invalid {
		require.ErrorIs(t, blob.ValidateKey(k), blob.ErrInvalidKey, k)
	}
}

func TestDigest(t *testing.T) {
	d := blob.NewDigest()
	_, err := io.Copy(d, strings.NewReader("%PDF-1.4 rest of the document"))
	require.NoError(t, err)

	require.EqualValues(t, 29, d.Size())
	require.Equal(t, "application/pdf", d.ContentType())
	require.True(t, strings.HasPrefix(d.Checksum(), "blake3:"))
	require.Len(t, d.Checksum(), len("blake3:")+64)

	other := blob.NewDigest()
	_, _ = other.Write([]byte("%PDF-1.4 rest of the document"))
	require.Equal(t, d.Checksum(), other.Checksum())
}
