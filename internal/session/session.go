package session

import "time"

// Session is the server-side record behind a portal token. It is handed to
// request handlers explicitly through the request context.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	BackendToken string     `json:"-"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

const RoleAdmin = "admin"

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
