package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/idx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

// DownloadRecorder is the accounting sink for served files. Every file that
// leaves the service produces one event, archives included.
type DownloadRecorder struct {
	Store store.Store
	Now   func() time.Time
}

// Record persists events in the given order and logs each of them. Ids and
// timestamps are filled in when empty.
func (r *DownloadRecorder) Record(ctx context.Context, events ...domain.DownloadEvent) error {
	if len(events) == 0 {
		return nil
	}
	l := slogx.FromContext(ctx)
	now := nowFrom(r.Now)

	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		for i := range events {
			e := &events[i]
			if e.ID == "" {
				e.ID = idx.NewAt(now).String()
			}
			if e.OccurredAt.IsZero() {
				e.OccurredAt = now
			}
			if err := tx.DownloadEvents().CreateDownloadEvent(ctx, *e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, e := range events {
		l.Info("file_downloaded",
			slog.String("bucket_id", e.BucketID),
			slog.String("key", e.Key),
			slog.String("version_id", e.VersionID),
			slog.Int64("size", e.Size),
			slog.String("granted_by", e.Decision.String()),
			slog.String("jti", e.TokenID),
			slog.Bool("archive", e.Archive),
		)
	}
	return nil
}

// Events lists the recorded downloads of a bucket, oldest first.
func (r *DownloadRecorder) Events(ctx context.Context, bucketID string) ([]domain.DownloadEvent, error) {
	return r.Store.DownloadEvents().ListDownloadEvents(ctx, bucketID)
}
