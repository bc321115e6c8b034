package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
	"github.com/google/uuid"
)

// DefaultArchiveConcurrency bounds parallel blob opens for bucket archives.
const DefaultArchiveConcurrency = 4

// AccessGate decides whether a caller may read the files of a bucket and, if
// so, fetches them from blob storage. Token expiry is judged by the
// Verifier's clock.
type AccessGate struct {
	Store       store.Store
	Blobs       blob.Store
	Verifier    jwtx.Verifier
	Permissions PermissionChecker
	Downloads   *DownloadRecorder

	// ArchiveConcurrency bounds parallel blob opens; <= 0 means
	// DefaultArchiveConcurrency.
	ArchiveConcurrency int
}

type ObjectRequest struct {
	BucketID  string
	Key       string
	VersionID string // empty selects the head version
	Token     string // capability token, if presented
	Principal domain.Principal

	// HeadOnly authorizes and opens the object without recording a
	// download, for HEAD requests that send no bytes.
	HeadOnly bool
}

type ObjectDownload struct {
	Object   domain.Object
	Body     io.ReadCloser
	Decision domain.Decision
}

// grant is the outcome of decide. claims is set for token grants.
type grant struct {
	decision domain.Decision
	claims   *jwtx.CapabilityClaims
}

// decide is the single authorization rule for every read:
//
//   - a token that fails verification aborts with ErrInvalidToken;
//   - a token scoped to bucketID grants without consulting permissions;
//   - a token for another bucket denies anonymous callers with ErrNotFound
//     and otherwise falls through to the permission check;
//   - without a token, every object must pass CanReadObject. Failures are
//     ErrNotFound for anonymous callers and ErrForbidden for signed-in ones.
func (g *AccessGate) decide(
	ctx context.Context,
	bucketID, token string,
	principal domain.Principal,
	objects []domain.Object,
) (grant, error) {
	l := slogx.FromContext(ctx)

	if token != "" {
		claims, err := g.Verifier.VerifyCapability(token)
		if err != nil {
			l.Info("capability token rejected", slog.Any("err", err))
			return grant{}, ErrInvalidToken
		}
		if claims.BucketID == bucketID {
			return grant{decision: domain.DecisionGrantedByToken, claims: claims}, nil
		}

		l.Info("capability token scoped to another bucket", slog.String("jti", claims.ID))
		if principal.Anonymous() {
			return grant{}, ErrNotFound
		}
	}

	bucket, err := g.Store.Buckets().GetBucketByID(ctx, bucketID)
	if err != nil {
		return grant{}, mapStoreErr(err)
	}
	rec, err := g.Store.Records().GetRecordByID(ctx, bucket.RecordID)
	if err != nil {
		return grant{}, mapStoreErr(err)
	}

	for _, obj := range objects {
		if g.Permissions.CanReadObject(principal, rec, obj) {
			continue
		}
		if principal.Anonymous() {
			return grant{}, ErrNotFound
		}
		return grant{}, ErrForbidden
	}
	return grant{decision: domain.DecisionGrantedByOwnership}, nil
}

// FetchObject resolves one object version, authorizes the caller and opens
// its bytes. The caller must close Body. Unless HeadOnly is set, a download
// event is recorded once the blob is open.
func (g *AccessGate) FetchObject(ctx context.Context, req ObjectRequest) (*ObjectDownload, error) {
	bucketID, ok := normalizeBucketID(req.BucketID)
	if !ok {
		return nil, ErrNotFound
	}
	ctx = slogx.With(ctx, slog.String("bucket_id", bucketID))

	obj, err := g.resolveObject(ctx, bucketID, req.Key, req.VersionID)
	if err != nil {
		return nil, err
	}

	gr, err := g.decide(ctx, bucketID, req.Token, req.Principal, []domain.Object{obj})
	if err != nil {
		return nil, err
	}

	body, err := g.Blobs.Open(ctx, obj.BlobKey)
	if err != nil {
		return nil, err
	}

	if !req.HeadOnly {
		g.record(ctx, gr, req.Principal, false, obj)
	}

	return &ObjectDownload{Object: obj, Body: body, Decision: gr.decision}, nil
}

func (g *AccessGate) resolveObject(ctx context.Context, bucketID, key, versionID string) (domain.Object, error) {
	var (
		obj domain.Object
		err error
	)
	if versionID != "" {
		if _, perr := uuid.Parse(versionID); perr != nil {
			return domain.Object{}, ErrNotFound
		}
		obj, err = g.Store.Objects().GetObjectVersion(ctx, bucketID, key, versionID)
	} else {
		obj, err = g.Store.Objects().GetHeadObject(ctx, bucketID, key)
	}
	if err != nil {
		return domain.Object{}, mapStoreErr(err)
	}
	return obj, nil
}

// record emits one event per object. Accounting failures are logged and
// never fail a download that has already been authorized.
func (g *AccessGate) record(ctx context.Context, gr grant, p domain.Principal, archive bool, objects ...domain.Object) {
	if g.Downloads == nil {
		return
	}

	var tokenID string
	if gr.claims != nil {
		tokenID = gr.claims.ID
	}

	events := make([]domain.DownloadEvent, 0, len(objects))
	for _, obj := range objects {
		events = append(events, domain.DownloadEvent{
			BucketID:  obj.BucketID,
			VersionID: obj.VersionID,
			Key:       obj.Key,
			Size:      obj.Size,
			Decision:  gr.decision,
			UserID:    p.UserID,
			TokenID:   tokenID,
			Archive:   archive,
		})
	}

	if err := g.Downloads.Record(ctx, events...); err != nil {
		slogx.FromContext(ctx).Error("failed to record downloads", slog.Any("err", err))
	}
}

// normalizeBucketID returns the canonical lowercase form of a UUID bucket id.
func normalizeBucketID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, blob.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
