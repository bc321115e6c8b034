package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/idx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
	"github.com/google/uuid"
)

const maxTitleLength = 512

type RecordService struct {
	Store       store.Store
	Permissions PermissionChecker
	Now         func() time.Time
}

// Create stores a record owned by the principal together with its bucket.
func (s *RecordService) Create(
	ctx context.Context,
	principal domain.Principal,
	title string,
	openAccess bool,
) (domain.RecordWithBucket, error) {
	if principal.Anonymous() {
		return domain.RecordWithBucket{}, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLength {
		return domain.RecordWithBucket{}, ErrInvalidRequest
	}

	now := nowFrom(s.Now)
	rec := domain.Record{
		ID:         idx.NewAt(now).String(),
		OwnerID:    principal.UserID,
		Title:      title,
		OpenAccess: openAccess,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	bucket := domain.Bucket{
		ID:        uuid.NewString(),
		RecordID:  rec.ID,
		CreatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Records().CreateRecord(ctx, rec); err != nil {
			return err
		}
		return tx.Buckets().CreateBucket(ctx, bucket)
	})
	if err != nil {
		return domain.RecordWithBucket{}, err
	}

	slogx.FromContext(ctx).Info("record created",
		slog.String("record_id", rec.ID),
		slog.String("bucket_id", bucket.ID),
		slog.String("owner_id", rec.OwnerID),
	)
	return domain.RecordWithBucket{Record: rec, BucketID: bucket.ID}, nil
}

// Get returns a record the principal may see: its owner, or anyone when the
// record is open access. Hidden records are reported as ErrNotFound.
func (s *RecordService) Get(ctx context.Context, principal domain.Principal, id string) (domain.RecordWithBucket, error) {
	id, err := parseRecordID(id)
	if err != nil {
		return domain.RecordWithBucket{}, err
	}
	rec, err := s.Store.Records().GetRecordByID(ctx, id)
	if err != nil {
		return domain.RecordWithBucket{}, mapStoreErr(err)
	}
	if !rec.OpenAccess && !s.Permissions.CanEditRecord(principal, rec) {
		return domain.RecordWithBucket{}, ErrNotFound
	}

	bucket, err := s.Store.Buckets().GetBucketByRecordID(ctx, rec.ID)
	if err != nil {
		return domain.RecordWithBucket{}, mapStoreErr(err)
	}
	return domain.RecordWithBucket{Record: rec, BucketID: bucket.ID}, nil
}

// SetOpenAccess changes whether the files of a record are public.
func (s *RecordService) SetOpenAccess(ctx context.Context, principal domain.Principal, id string, open bool) error {
	if principal.Anonymous() {
		return ErrUnauthorized
	}

	id, err := parseRecordID(id)
	if err != nil {
		return err
	}
	rec, err := s.Store.Records().GetRecordByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if !s.Permissions.CanEditRecord(principal, rec) {
		return ErrForbidden
	}

	if err := s.Store.Records().UpdateOpenAccess(ctx, id, open, nowFrom(s.Now)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// parseRecordID rejects ids that were never minted here as ErrNotFound.
func parseRecordID(raw string) (string, error) {
	id, err := idx.Parse(raw)
	if err != nil {
		return "", ErrNotFound
	}
	return id.String(), nil
}
