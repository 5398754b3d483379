package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session is still usable at t.
func (s Session) ValidAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}
