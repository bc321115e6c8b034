package sqlite

import (
	"context"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
)

type bucketsRepo struct {
	db dbtx
}

func (r *bucketsRepo) get(ctx context.Context, where string, arg string) (domain.Bucket, error) {
	var (
		b       domain.Bucket
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, record_id, created_at FROM buckets WHERE `+where+` = ?`, arg,
	).Scan(&b.ID, &b.RecordID, &created)
	if err != nil {
		return domain.Bucket{}, mapNotFound(err)
	}
	b.CreatedAt = fromMillis(created)
	return b, nil
}

func (r *bucketsRepo) GetBucketByID(ctx context.Context, id string) (domain.Bucket, error) {
	return r.get(ctx, "id", id)
}

func (r *bucketsRepo) GetBucketByRecordID(ctx context.Context, recordID string) (domain.Bucket, error) {
	return r.get(ctx, "record_id", recordID)
}

func (r *bucketsRepo) CreateBucket(ctx context.Context, b domain.Bucket) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO buckets (id, record_id, created_at) VALUES (?, ?, ?)`,
		b.ID, b.RecordID, toMillis(b.CreatedAt),
	)
	return mapConstraint(err)
}
