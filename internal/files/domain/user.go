package domain

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the caller of a request. The zero value is an anonymous caller.
type Principal struct {
	UserID   string
	Username string
}

// Anonymous reports whether the request carried no session.
func (p Principal) Anonymous() bool { return p.UserID == "" }

// Session is what a successful login returns.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
}
