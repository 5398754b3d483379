package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const FriendshipAccepted FriendshipStatus = "accepted"

// Friendship is one directed edge. Accepting a request always writes both directions.
type Friendship struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	FriendID  uuid.UUID        `json:"friendId"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}
