package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
)

type recordsRepo struct {
	db dbtx
}

func (r *recordsRepo) GetRecordByID(ctx context.Context, id string) (domain.Record, error) {
	var (
		rec                domain.Record
		created, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, open_access, created_at, updated_at
		FROM records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.OpenAccess, &created, &updatedAt)
	if err != nil {
		return domain.Record{}, mapNotFound(err)
	}
	rec.CreatedAt = fromMillis(created)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

func (r *recordsRepo) CreateRecord(ctx context.Context, rec domain.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (id, owner_id, title, open_access, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Title, rec.OpenAccess,
		toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *recordsRepo) UpdateOpenAccess(ctx context.Context, id string, open bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET open_access = ?, updated_at = ? WHERE id = ?`,
		open, toMillis(at), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
