package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

// MaxLifetimeDays keeps expiry arithmetic inside time.Duration.
const MaxLifetimeDays = 36500

// TempAccessService mints capability tokens that let anyone holding them read
// every file of one record's bucket until they expire.
type TempAccessService struct {
	Store       store.Store
	Signer      jwtx.Signer
	Permissions PermissionChecker
	Now         func() time.Time
}

// Issue mints a read token for the bucket of recordID, valid from now for
// days plus minutes. Only principals that may edit the record can issue one.
// Nothing is persisted.
func (s *TempAccessService) Issue(
	ctx context.Context,
	recordID string,
	principal domain.Principal,
	days, minutes int,
) (domain.TempAccess, error) {
	l := slogx.FromContext(ctx)

	if principal.Anonymous() {
		return domain.TempAccess{}, ErrUnauthorized
	}
	if days < 0 || minutes < 0 || days > MaxLifetimeDays || minutes > MaxLifetimeDays*24*60 {
		return domain.TempAccess{}, ErrInvalidLifetime
	}

	id, err := parseRecordID(recordID)
	if err != nil {
		return domain.TempAccess{}, err
	}
	rec, err := s.Store.Records().GetRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TempAccess{}, ErrNotFound
		}
		return domain.TempAccess{}, err
	}

	if !s.Permissions.CanEditRecord(principal, rec) {
		l.Info("temp access refused",
			slog.String("record_id", rec.ID),
			slog.String("user_id", principal.UserID),
		)
		return domain.TempAccess{}, ErrForbidden
	}

	bucket, err := s.Store.Buckets().GetBucketByRecordID(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Error("record has no bucket", slog.String("record_id", rec.ID))
			return domain.TempAccess{}, ErrNotFound
		}
		return domain.TempAccess{}, err
	}

	// NumericDate has second precision; report the expiry the token carries.
	issuedAt := nowFrom(s.Now).Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.
		Add(time.Duration(days) * 24 * time.Hour).
		Add(time.Duration(minutes) * time.Minute)

	claims := jwtx.NewCapabilityClaims(bucket.ID, issuedAt, expiresAt)
	token, err := s.Signer.Sign(&claims)
	if err != nil {
		return domain.TempAccess{}, err
	}

	l.Info("temp access issued",
		slog.String("record_id", rec.ID),
		slog.String("bucket_id", bucket.ID),
		slog.String("jti", claims.ID),
		slog.Time("expires_at", expiresAt),
	)

	return domain.TempAccess{Token: token, ExpiresAt: expiresAt}, nil
}
