package filesdk

import (
	"sync"
	"time"
)

// Session is a logged-in user. Session tokens are not refreshed; log in
// again once Expired reports true.
type Session struct {
	client *Client

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	userID      string
}

func newSession(c *Client, resp *SessionResponse) *Session {
	return &Session{
		client:      c,
		accessToken: resp.AccessToken,
		expiresAt:   resp.ExpiresAt,
		userID:      resp.UserID,
	}
}

// AccessToken returns the session token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// UserID is empty for sessions built with NewSessionFromToken.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Expired reports whether the token is past its expiry. A zero expiry never
// expires client side.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && !time.Now().Before(s.expiresAt)
}

// Client returns the client the session was created from.
func (s *Session) Client() *Client { return s.client }
