package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Repositories are exposed as methods so a Tx can hand out
// the same repositories bound to the transaction.
type Store interface {
	Users() Users
	Records() Records
	Buckets() Buckets
	Objects() Objects
	DownloadEvents() DownloadEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists on a duplicate
	// username.
	CreateUser(ctx context.Context, u domain.User) error
}

type Records interface {
	GetRecordByID(ctx context.Context, id string) (domain.Record, error)

	CreateRecord(ctx context.Context, r domain.Record) error

	// UpdateOpenAccess flips the open_access flag and bumps updated_at.
	UpdateOpenAccess(ctx context.Context, id string, open bool, at time.Time) error
}

type Buckets interface {
	GetBucketByID(ctx context.Context, id string) (domain.Bucket, error)

	// GetBucketByRecordID resolves the single bucket of a record.
	GetBucketByRecordID(ctx context.Context, recordID string) (domain.Bucket, error)

	// CreateBucket fails with ErrAlreadyExists if the record already has one.
	CreateBucket(ctx context.Context, b domain.Bucket) error
}

type Objects interface {
	// GetHeadObject returns the current version of key.
	GetHeadObject(ctx context.Context, bucketID, key string) (domain.Object, error)

	// GetObjectVersion returns a specific version of key.
	GetObjectVersion(ctx context.Context, bucketID, key, versionID string) (domain.Object, error)

	// ListHeadObjects returns the head version of every key, ordered by key.
	ListHeadObjects(ctx context.Context, bucketID string) ([]domain.Object, error)

	// ListVersions returns every version of key, newest first.
	ListVersions(ctx context.Context, bucketID, key string) ([]domain.Object, error)

	// CreateHeadVersion demotes the current head of o.Key (if any) and
	// inserts o as the new head. Run it inside a transaction.
	CreateHeadVersion(ctx context.Context, o domain.Object) error
}

type DownloadEvents interface {
	CreateDownloadEvent(ctx context.Context, e domain.DownloadEvent) error

	// ListDownloadEvents returns the events of a bucket, oldest first.
	ListDownloadEvents(ctx context.Context, bucketID string) ([]domain.DownloadEvent, error)

	// DeleteDownloadEventsBefore is housekeeping; it returns the number of
	// rows removed.
	DeleteDownloadEventsBefore(ctx context.Context, before time.Time) (int64, error)
}
