package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// ArchiveFilename is the download name of every bucket archive.
const ArchiveFilename = "files.zip"

type BucketRequest struct {
	BucketID  string
	Token     string
	Principal domain.Principal
}

// ArchiveInfo describes a written bucket archive.
type ArchiveInfo struct {
	Entries      int
	LastModified time.Time // newest member
	Decision     domain.Decision
}

// authorizeBucket lists the head objects of a bucket and runs decide over
// all of them. The returned context logs the bucket id.
func (g *AccessGate) authorizeBucket(ctx context.Context, req BucketRequest) (context.Context, []domain.Object, grant, error) {
	bucketID, ok := normalizeBucketID(req.BucketID)
	if !ok {
		return ctx, nil, grant{}, ErrNotFound
	}
	ctx = slogx.With(ctx, slog.String("bucket_id", bucketID))

	if _, err := g.Store.Buckets().GetBucketByID(ctx, bucketID); err != nil {
		return ctx, nil, grant{}, mapStoreErr(err)
	}

	objects, err := g.Store.Objects().ListHeadObjects(ctx, bucketID)
	if err != nil {
		return ctx, nil, grant{}, err
	}
	if len(objects) == 0 {
		return ctx, nil, grant{}, ErrNotFound
	}

	gr, err := g.decide(ctx, bucketID, req.Token, req.Principal, objects)
	if err != nil {
		return ctx, nil, grant{}, err
	}
	return ctx, objects, gr, nil
}

// StatBucket authorizes an archive request and describes the archive
// FetchBucket would write, without opening blobs or recording downloads.
func (g *AccessGate) StatBucket(ctx context.Context, req BucketRequest) (*ArchiveInfo, error) {
	_, objects, gr, err := g.authorizeBucket(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ArchiveInfo{
		Entries:      len(objects),
		LastModified: newestUpdate(objects),
		Decision:     gr.decision,
	}, nil
}

// FetchBucket writes every head object of a bucket to w as one uncompressed
// ZIP, entries named by key in key order. Authorization covers the whole
// bucket: one failing object denies the request. Nothing is written to w
// unless every blob could be opened, but a failure while copying leaves a
// truncated archive, so w should be a spool and not the client connection.
func (g *AccessGate) FetchBucket(ctx context.Context, req BucketRequest, w io.Writer) (*ArchiveInfo, error) {
	ctx, objects, gr, err := g.authorizeBucket(ctx, req)
	if err != nil {
		return nil, err
	}
	l := slogx.FromContext(ctx)

	readers, err := g.openAll(ctx, objects)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, rc := range readers {
			if rc != nil {
				_ = rc.Close()
			}
		}
	}()

	info := &ArchiveInfo{
		Entries:      len(objects),
		LastModified: newestUpdate(objects),
		Decision:     gr.decision,
	}

	zw := zip.NewWriter(w)
	for i, obj := range objects {
		hdr := &zip.FileHeader{
			Name:     obj.Key,
			Method:   zip.Store,
			Modified: obj.UpdatedAt,
		}
		hdr.SetMode(0o644)

		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("archive entry %q: %w", obj.Key, err)
		}
		if _, err := io.Copy(fw, readers[i]); err != nil {
			return nil, fmt.Errorf("archive entry %q: %w", obj.Key, err)
		}
		_ = readers[i].Close()
		readers[i] = nil
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	l.Info("bucket archive built",
		slog.Int("entries", info.Entries),
		slog.String("granted_by", gr.decision.String()),
	)

	g.record(ctx, gr, req.Principal, true, objects...)

	return info, nil
}

// openAll opens the blob of every object with bounded parallelism. The
// result is indexed like objects. On error every opened reader is closed.
func (g *AccessGate) openAll(ctx context.Context, objects []domain.Object) ([]io.ReadCloser, error) {
	limit := g.ArchiveConcurrency
	if limit <= 0 {
		limit = DefaultArchiveConcurrency
	}
	limit = min(limit, len(objects))

	readers := make([]io.ReadCloser, len(objects))

	// Not errgroup.WithContext: that context is cancelled when Wait returns,
	// and S3 bodies are bound to the context they were opened with.
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, obj := range objects {
		eg.Go(func() error {
			rc, err := g.Blobs.Open(ctx, obj.BlobKey)
			if err != nil {
				return fmt.Errorf("open %q: %w", obj.Key, err)
			}
			readers[i] = rc
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		for _, rc := range readers {
			if rc != nil {
				_ = rc.Close()
			}
		}
		return nil, err
	}
	return readers, nil
}

func newestUpdate(objects []domain.Object) time.Time {
	var newest time.Time
	for _, obj := range objects {
		if obj.UpdatedAt.After(newest) {
			newest = obj.UpdatedAt
		}
	}
	return newest
}
