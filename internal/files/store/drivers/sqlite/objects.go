package sqlite

import (
	"context"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
)

type objectsRepo struct {
	db dbtx
}

const objectColumns = `version_id, bucket_id, key, size, checksum, mime_type, blob_key, is_head, created_at, updated_at`

func scanObject(row interface{ Scan(...any) error }) (domain.Object, error) {
	var (
		o                  domain.Object
		created, updatedAt int64
	)
	err := row.Scan(
		&o.VersionID, &o.BucketID, &o.Key, &o.Size, &o.Checksum,
		&o.MimeType, &o.BlobKey, &o.IsHead, &created, &updatedAt,
	)
	if err != nil {
		return domain.Object{}, mapNotFound(err)
	}
	o.CreatedAt = fromMillis(created)
	o.UpdatedAt = fromMillis(updatedAt)
	return o, nil
}

func (r *objectsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Object, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *objectsRepo) GetHeadObject(ctx context.Context, bucketID, key string) (domain.Object, error) {
	return scanObject(r.db.QueryRowContext(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE bucket_id = ? AND key = ? AND is_head = 1`,
		bucketID, key,
	))
}

func (r *objectsRepo) GetObjectVersion(ctx context.Context, bucketID, key, versionID string) (domain.Object, error) {
	return scanObject(r.db.QueryRowContext(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE bucket_id = ? AND key = ? AND version_id = ?`,
		bucketID, key, versionID,
	))
}

func (r *objectsRepo) ListHeadObjects(ctx context.Context, bucketID string) ([]domain.Object, error) {
	return r.list(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE bucket_id = ? AND is_head = 1 ORDER BY key`,
		bucketID,
	)
}

func (r *objectsRepo) ListVersions(ctx context.Context, bucketID, key string) ([]domain.Object, error) {
	return r.list(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE bucket_id = ? AND key = ?
		ORDER BY created_at DESC, version_id DESC`,
		bucketID, key,
	)
}

func (r *objectsRepo) CreateHeadVersion(ctx context.Context, o domain.Object) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE objects SET is_head = 0, updated_at = ? WHERE bucket_id = ? AND key = ? AND is_head = 1`,
		toMillis(o.UpdatedAt), o.BucketID, o.Key,
	); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO objects (`+objectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		o.VersionID, o.BucketID, o.Key, o.Size, o.Checksum, o.MimeType, o.BlobKey,
		toMillis(o.CreatedAt), toMillis(o.UpdatedAt),
	)
	return mapConstraint(err)
}
