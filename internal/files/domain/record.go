package domain

import "time"

// Record is a published deposit owned by one user. Its files live in exactly
// one Bucket.
type Record struct {
	ID         string
	OwnerID    string
	Title      string
	OpenAccess bool // files readable by anyone without a token
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Bucket is the versioned file container of a record. ID is a UUID and is the
// value capability tokens are scoped to.
type Bucket struct {
	ID        string
	RecordID  string
	CreatedAt time.Time
}

// RecordWithBucket is returned on creation so callers learn the bucket id
// without a second lookup.
type RecordWithBucket struct {
	Record
	BucketID string
}
