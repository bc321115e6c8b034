package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is the single coarse error every verification failure
	// wraps. Callers should not branch on the underlying cause.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	ErrMissingClaim = errors.New("jwtx: missing required claim")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

func missingClaim(name string) error {
	return fmt.Errorf("%w %q", ErrMissingClaim, name)
}

// Verifier validates tokens signed by an HS256Signer sharing the same secret.
type Verifier interface {
	VerifyCapability(token string) (*CapabilityClaims, error)
	VerifySession(token string) (*SessionClaims, error)
}

// HS256Verifier is a pure function of (token, now, secret). The algorithm is
// pinned so tokens asserting any other "alg" (including "none") are rejected.
type HS256Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type VerifierOption func(*HS256Verifier)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *HS256Verifier) { v.now = now }
}

// WithIssuer requires session tokens to carry the given "iss".
func WithIssuer(issuer string) VerifierOption {
	return func(v *HS256Verifier) { v.issuer = issuer }
}

func NewHS256Verifier(secret []byte, opts ...VerifierOption) (*HS256Verifier, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	v := &HS256Verifier{secret: clone(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// VerifyCapability validates a temporary access token and returns its claims.
func (v *HS256Verifier) VerifyCapability(raw string) (*CapabilityClaims, error) {
	claims := &CapabilityClaims{}
	err := v.parse(raw, claims,
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifySession validates a session token issued at login.
func (v *HS256Verifier) VerifySession(raw string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithAudience(SessionAudience),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &SessionClaims{}
	if err := v.parse(raw, claims, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *HS256Verifier) parse(raw string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	// One clock read per verification, so a token cannot flip from valid to
	// expired halfway through the checks.
	now := v.now().UTC()

	parser := jwt.NewParser(append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}, opts...)...)

	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
