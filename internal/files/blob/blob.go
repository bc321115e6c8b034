// Package blob stores the bytes of object versions. Metadata (key, size,
// checksum, head flag) lives in the database; a blob is addressed only by an
// opaque storage key.
package blob

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strings"

	"github.com/zeebo/blake3"
)

var (
	ErrNotFound   = errors.New("blob: not found")
	ErrInvalidKey = errors.New("blob: invalid key")
)

const maxKeyLength = 512

// Store is implemented by the filesystem and S3 drivers.
type Store interface {
	// Put writes size bytes from r under key, replacing any existing blob.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Open returns a reader for the blob. Callers must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Digest accumulates the size, BLAKE3 checksum and sniffed content type of
// everything written to it.
type Digest struct {
	h     hash.Hash
	size  int64
	sniff []byte
}

func NewDigest() *Digest {
	return &Digest{h: blake3.New(), sniff: make([]byte, 0, 512)}
}

func (d *Digest) Write(p []byte) (int, error) {
	if room := cap(d.sniff) - len(d.sniff); room > 0 {
		d.sniff = append(d.sniff, p[:min(room, len(p))]...)
	}
	d.size += int64(len(p))
	return d.h.Write(p)
}

func (d *Digest) Size() int64 { return d.size }

// Checksum returns "blake3:<hex>".
func (d *Digest) Checksum() string {
	return "blake3:" + hex.EncodeToString(d.h.Sum(nil))
}

// ContentType sniffs the first 512 bytes written.
func (d *Digest) ContentType() string {
	return http.DetectContentType(d.sniff)
}

// ValidateKey rejects keys that could escape the storage root or that the
// backends would treat differently.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case len(key) > maxKeyLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, maxKeyLength)
	case strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/"):
		return fmt.Errorf("%w: leading or trailing slash", ErrInvalidKey)
	case strings.Contains(key, "//"):
		return fmt.Errorf("%w: consecutive slashes", ErrInvalidKey)
	case strings.Contains(key, ".."):
		return fmt.Errorf("%w: relative path traversal", ErrInvalidKey)
	}

	for i, r := range key {
		if !isValidKeyChar(r) {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	return nil
}

func isValidKeyChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.' || r == '/'
}
