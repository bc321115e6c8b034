package domain

import "time"

// Object is one version of a file in a bucket. Exactly one version per
// (bucket, key) is the head; it is served when no version is requested.
type Object struct {
	VersionID string
	BucketID  string
	Key       string
	Size      int64
	Checksum  string // "blake3:<hex>"
	MimeType  string
	BlobKey   string // location in the blob store
	IsHead    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ObjectRef addresses an object. An empty VersionID selects the head.
type ObjectRef struct {
	BucketID  string
	Key       string
	VersionID string
}
