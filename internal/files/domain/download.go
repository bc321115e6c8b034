package domain

import "time"

// DownloadEvent records one file served to a caller. A bucket archive emits
// one event per member.
type DownloadEvent struct {
	ID         string
	BucketID   string
	VersionID  string
	Key        string
	Size       int64
	Decision   Decision
	UserID     string // empty for anonymous callers
	TokenID    string // jti of the capability token, if one granted access
	Archive    bool
	OccurredAt time.Time
}

// TempAccess is the issued capability token and its expiry.
type TempAccess struct {
	Token     string
	ExpiresAt time.Time
}
