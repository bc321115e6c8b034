package filesdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON error envelope. Client code should use APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned when a JSON request body fails field
// validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Users & Sessions
// ============================================================================

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest is the body of POST /v1/sessions.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse carries a session token. Send it as
// "Authorization: Bearer {access_token}".
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
}

// ============================================================================
// Records
// ============================================================================

// CreateRecordRequest is the body of POST /v1/records.
type CreateRecordRequest struct {
	Title      string `json:"title"`
	OpenAccess bool   `json:"open_access"`
}

// SetOpenAccessRequest is the body of PATCH /v1/records/{id}.
type SetOpenAccessRequest struct {
	OpenAccess bool `json:"open_access"`
}

// RecordResponse describes a record and the bucket holding its files.
type RecordResponse struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	OpenAccess bool      `json:"open_access"`
	BucketID   string    `json:"bucket_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ============================================================================
// Files
// ============================================================================

// ObjectResponse describes one stored object version.
type ObjectResponse struct {
	VersionID string    `json:"version_id"`
	BucketID  string    `json:"bucket_id"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	MimeType  string    `json:"mimetype"`
	IsHead    bool      `json:"is_head"`
	CreatedAt time.Time `json:"created_at"`
}

// TempAccessResponse is returned by GET /v1/records/{id}/tempfileaccess.
// Expiration uses the HTTP date format, e.g. "Tue, 31 Mar 2026 12:00:00 GMT".
type TempAccessResponse struct {
	JWT        string `json:"jwt"`
	Expiration string `json:"expiration"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz (which adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the status of each dependency checked by /readyz.
type HealthChecks struct {
	Database  string `json:"database"`
	BlobStore string `json:"blob_store"`
}
