package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
)

type downloadEventsRepo struct {
	db dbtx
}

func (r *downloadEventsRepo) CreateDownloadEvent(ctx context.Context, e domain.DownloadEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO download_events
			(id, bucket_id, version_id, key, size, decision, user_id, token_id, archive, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BucketID, e.VersionID, e.Key, e.Size, e.Decision.String(),
		mapStringNull(e.UserID), mapStringNull(e.TokenID), e.Archive, toMillis(e.OccurredAt),
	)
	return mapConstraint(err)
}

func (r *downloadEventsRepo) ListDownloadEvents(ctx context.Context, bucketID string) ([]domain.DownloadEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bucket_id, version_id, key, size, decision, user_id, token_id, archive, occurred_at
		FROM download_events WHERE bucket_id = ?
		ORDER BY occurred_at, id`, bucketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DownloadEvent
	for rows.Next() {
		var (
			e               domain.DownloadEvent
			decision        string
			userID, tokenID sql.NullString
			occurred        int64
		)
		if err := rows.Scan(
			&e.ID, &e.BucketID, &e.VersionID, &e.Key, &e.Size, &decision,
			&userID, &tokenID, &e.Archive, &occurred,
		); err != nil {
			return nil, err
		}
		e.Decision = domain.ParseDecision(decision)
		e.UserID = mapNullString(userID)
		e.TokenID = mapNullString(tokenID)
		e.OccurredAt = fromMillis(occurred)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *downloadEventsRepo) DeleteDownloadEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM download_events WHERE occurred_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
