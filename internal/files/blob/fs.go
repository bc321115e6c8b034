package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	blobDirname = "blobs"
	tmpDirname  = "tmp"
)

// FSStore keeps blobs under root, sharded two levels deep by the SHA-256 of
// the key: root/blobs/a3/f2/a3f29d4e...
type FSStore struct {
	root     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("blob: empty root")
	}
	s := &FSStore{root: filepath.Clean(root), fileMode: 0o640, dirMode: 0o750}

	for _, dir := range []string{blobDirname, tmpDirname} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), s.dirMode); err != nil {
			return nil, fmt.Errorf("blob: creating %s dir: %w", dir, err)
		}
	}
	return s, nil
}

func shardPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(h[:2], h[2:4], h)
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, blobDirname, shardPath(key))
}

// Put writes to a temp file first and renames it into place so a blob is
// either complete or absent.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDirname), "put-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err != nil {
		return err
	}
	if size >= 0 && n != size {
		return fmt.Errorf("blob: short write for %q: wrote %d of %d bytes", key, n, size)
	}
	if err := tmp.Chmod(s.fileMode); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), s.dirMode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("blob: committing %q: %w", key, err)
	}
	committed = true
	return nil
}

func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	p := s.path(key)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	s.cleanupEmptyDirs(p)
	return nil
}

// Ping checks the blob directory is still there and writable.
func (s *FSStore) Ping(ctx context.Context) error {
	f, err := os.CreateTemp(filepath.Join(s.root, tmpDirname), "ping-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// cleanupEmptyDirs walks up from a deleted blob removing shard directories
// that became empty. It stops at the blobs directory.
func (s *FSStore) cleanupEmptyDirs(path string) {
	blobsDir := filepath.Join(s.root, blobDirname)
	for parent := filepath.Dir(path); parent != blobsDir && len(parent) > len(blobsDir); parent = filepath.Dir(parent) {
		entries, err := os.ReadDir(parent)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(parent); err != nil {
			return
		}
	}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
