package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the per-client state shared across requests. It carries the
// single-channel binding: a session is subscribed to exactly zero or one
// announcement channel at any time.
type Session struct {
	ID             uuid.UUID `json:"id"`
	Token          string    `json:"token"`
	Channel        string    `json:"channel,omitempty"` // bound channel name, empty when unsubscribed
	Admin          bool      `json:"admin,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewSession creates a new unbound session with the given token and TTL.
func NewSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// Subscribed reports whether the session is bound to a channel.
func (s *Session) Subscribed() bool {
	return s != nil && s.Channel != ""
}

// Bind sets the channel binding, silently replacing any previous one.
// Switching channels never cascades to open push connections; those keep
// their original channel until they disconnect.
func (s *Session) Bind(channel string) {
	if s == nil {
		return
	}
	s.Channel = channel
}

// Unbind clears the channel binding.
func (s *Session) Unbind() {
	if s == nil {
		return
	}
	s.Channel = ""
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}
