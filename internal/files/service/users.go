package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/cryptox"
	"github.com/aussiebroadwan/fileaccess/pkg/idx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 64
)

// UserService provisions users. There is no self sign-up: creating a user
// requires the operator's bootstrap token.
type UserService struct {
	Store          store.Store
	Hasher         *cryptox.PasswordHasher
	BootstrapToken string
	Now            func() time.Time
}

func (s *UserService) Create(ctx context.Context, bootstrapToken, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if bootstrapToken == "" {
		return domain.User{}, ErrUnauthorized
	}
	if s.BootstrapToken == "" || !cryptox.EqualTokens(bootstrapToken, s.BootstrapToken) {
		l.Warn("user provisioning refused: bad bootstrap token")
		return domain.User{}, ErrForbidden
	}

	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength || len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidRequest
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	now := nowFrom(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAlreadyExists
		}
		return domain.User{}, err
	}

	l.Info("user created", slog.String("user_id", u.ID), slog.String("username", u.Username))
	return u, nil
}
