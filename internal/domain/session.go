package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a persisted login of a single user.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(userID uuid.UUID, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(ttl).UTC(),
	}
}

func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !now.Before(s.ExpiresAt)
}
