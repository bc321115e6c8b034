package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultSessionTTL is the lifetime of a session token handed out at login.
	DefaultSessionTTL = 8 * time.Hour

	// DefaultTempAccessDays is the default lifetime, in days, of a temporary
	// file access token.
	DefaultTempAccessDays = 30

	// ActionRead is the only capability action currently minted.
	ActionRead = "read"

	// SessionAudience marks session tokens so they can never be mistaken for
	// capability tokens (which carry no audience at all).
	SessionAudience = "fileaccess-session"
)

// CapabilityClaims are the claims of a temporary access token. Possession of
// the signed token grants Action on every object of BucketID until ExpiresAt.
// There is deliberately no subject: the token carries no user identity.
type CapabilityClaims struct {
	BucketID string `json:"bucket_id"`
	Action   string `json:"action"`

	jwt.RegisteredClaims
}

// NewCapabilityClaims builds read claims for a bucket valid in [issuedAt, expiresAt).
func NewCapabilityClaims(bucketID string, issuedAt, expiresAt time.Time) CapabilityClaims {
	return CapabilityClaims{
		BucketID: bucketID,
		Action:   ActionRead,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        NewJTI(),
		},
	}
}

// Validate is invoked by the jwt validator after the registered claims have
// been checked. It enforces the exact field set the issuer writes.
func (c *CapabilityClaims) Validate() error {
	switch {
	case c.BucketID == "":
		return missingClaim("bucket_id")
	case c.ID == "":
		return missingClaim("jti")
	case c.IssuedAt == nil:
		return missingClaim("iat")
	case c.Action != ActionRead:
		return ErrInvalidClaim
	}
	return nil
}

// SessionClaims identify an authenticated user for the lifetime of a login.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user, informational only.
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(subject, username, issuer string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{SessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
	}
}

func (c *SessionClaims) Validate() error {
	if c.Subject == "" {
		return missingClaim("sub")
	}
	return nil
}

// NewJTI returns a fresh random token identifier. It is not recorded
// anywhere yet; it only makes two tokens for the same bucket distinguishable.
func NewJTI() string {
	return uuid.NewString()
}
