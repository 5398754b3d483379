package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a verified person. Subject is the stable identifier returned by the
// identity provider; FriendCode is assigned once and never changes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Subject      string    `json:"subject"`
	DisplayName  string    `json:"displayName"`
	ProfileImage string    `json:"profileImage,omitempty"`
	FriendCode   string    `json:"friendCode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries the mutable profile fields. Nil or empty values are left unchanged.
type UserUpdate struct {
	DisplayName  *string
	ProfileImage *string
}
