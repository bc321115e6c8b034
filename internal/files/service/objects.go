package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
	"github.com/google/uuid"
)

const maxObjectKeyLength = 1024

// ObjectService writes new object versions. Reads go through AccessGate.
type ObjectService struct {
	Store       store.Store
	Blobs       blob.Store
	Permissions PermissionChecker
	Now         func() time.Time

	// SpoolDir holds uploads while they are hashed; empty means os.TempDir.
	SpoolDir string
}

type UploadRequest struct {
	BucketID    string
	Key         string
	ContentType string
	Body        io.Reader
	Principal   domain.Principal
}

// Upload stores Body as the new head version of Key. Only principals that
// may edit the owning record can upload.
func (s *ObjectService) Upload(ctx context.Context, req UploadRequest) (domain.Object, error) {
	l := slogx.FromContext(ctx)

	if req.Principal.Anonymous() {
		return domain.Object{}, ErrUnauthorized
	}
	if err := validateObjectKey(req.Key); err != nil {
		return domain.Object{}, err
	}

	bucketID, ok := normalizeBucketID(req.BucketID)
	if !ok {
		return domain.Object{}, ErrNotFound
	}
	bucket, err := s.Store.Buckets().GetBucketByID(ctx, bucketID)
	if err != nil {
		return domain.Object{}, mapStoreErr(err)
	}
	rec, err := s.Store.Records().GetRecordByID(ctx, bucket.RecordID)
	if err != nil {
		return domain.Object{}, mapStoreErr(err)
	}
	if !s.Permissions.CanEditRecord(req.Principal, rec) {
		return domain.Object{}, ErrForbidden
	}

	spool, err := os.CreateTemp(s.SpoolDir, "upload-*")
	if err != nil {
		return domain.Object{}, err
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	digest := blob.NewDigest()
	if _, err := io.Copy(io.MultiWriter(spool, digest), req.Body); err != nil {
		return domain.Object{}, fmt.Errorf("%w: reading body: %w", ErrInvalidRequest, err)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return domain.Object{}, err
	}

	now := nowFrom(s.Now)
	obj := domain.Object{
		VersionID: uuid.NewString(),
		BucketID:  bucket.ID,
		Key:       req.Key,
		Size:      digest.Size(),
		Checksum:  digest.Checksum(),
		MimeType:  detectMimeType(req.Key, req.ContentType, digest),
		IsHead:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	obj.BlobKey = bucket.ID + "/" + obj.VersionID

	if err := s.Blobs.Put(ctx, obj.BlobKey, spool, obj.Size); err != nil {
		return domain.Object{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Objects().CreateHeadVersion(ctx, obj)
	})
	if err != nil {
		if derr := s.Blobs.Delete(ctx, obj.BlobKey); derr != nil {
			l.Warn("failed to remove orphaned blob", slog.String("blob_key", obj.BlobKey), slog.Any("err", derr))
		}
		return domain.Object{}, err
	}

	l.Info("object uploaded",
		slog.String("bucket_id", obj.BucketID),
		slog.String("key", obj.Key),
		slog.String("version_id", obj.VersionID),
		slog.Int64("size", obj.Size),
	)
	return obj, nil
}

// Versions lists every version of a key, newest first, to its record's editors.
func (s *ObjectService) Versions(ctx context.Context, principal domain.Principal, bucketID, key string) ([]domain.Object, error) {
	if principal.Anonymous() {
		return nil, ErrUnauthorized
	}
	bucketID, ok := normalizeBucketID(bucketID)
	if !ok {
		return nil, ErrNotFound
	}
	bucket, err := s.Store.Buckets().GetBucketByID(ctx, bucketID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	rec, err := s.Store.Records().GetRecordByID(ctx, bucket.RecordID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !s.Permissions.CanEditRecord(principal, rec) {
		return nil, ErrForbidden
	}

	versions, err := s.Store.Objects().ListVersions(ctx, bucket.ID, key)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return versions, nil
}

func validateObjectKey(key string) error {
	switch {
	case key == "", len(key) > maxObjectKeyLength:
		return fmt.Errorf("%w: key length", ErrInvalidRequest)
	case !utf8.ValidString(key), strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: key encoding", ErrInvalidRequest)
	case strings.HasPrefix(key, "/"), strings.HasSuffix(key, "/"):
		return fmt.Errorf("%w: key slashes", ErrInvalidRequest)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: key segment %q", ErrInvalidRequest, seg)
		}
	}
	return nil
}

// detectMimeType prefers a specific client supplied type, then the key's
// extension, then content sniffing.
func detectMimeType(key, declared string, d *blob.Digest) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return declared
		}
	}
	if byExt := mime.TypeByExtension(path.Ext(key)); byExt != "" {
		return byExt
	}
	return d.ContentType()
}
