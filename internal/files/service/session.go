package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/cryptox"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

// dummyHash is verified against when the username is unknown so both
// failure paths cost one argon2 evaluation.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$c29tZXNhbHRzb21lc2FsdA$2bWvbgbq0cZ8U0oC6Qm0rmmYb6r3u1aD0aQvL7r1k1s"

// SessionService exchanges a username and password for a session token.
type SessionService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (s *SessionService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, err
		}
		_ = s.Hasher.Verify(password, dummyHash)
		l.Info("login failed", slog.String("username", username))
		return domain.Session{}, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		l.Info("login failed", slog.String("username", username))
		return domain.Session{}, ErrInvalidCredentials
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(u.ID, u.Username, s.Issuer, ttl, nowFrom(s.Now))
	token, err := s.Signer.Sign(&claims)
	if err != nil {
		return domain.Session{}, err
	}

	l.Info("login succeeded", slog.String("user_id", u.ID))
	return domain.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		UserID:      u.ID,
	}, nil
}

// PrincipalFromClaims maps verified session claims to a principal.
func PrincipalFromClaims(c *jwtx.SessionClaims) domain.Principal {
	if c == nil {
		return domain.Principal{}
	}
	return domain.Principal{UserID: c.Subject, Username: c.Username}
}
