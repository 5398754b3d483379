package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/models"
	"github.com/google/uuid"
)

type SendFriendRequestRequest struct {
	FriendCode string `json:"friendCode"`
}

type ResolveFriendRequestRequest struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

type FriendsResponse struct {
	Friends  []FriendSummary   `json:"friends"`
	Requests []IncomingRequest `json:"requests"`
	Sent     []OutgoingRequest `json:"sent"`
}

type FriendSummary struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"displayName"`
	FriendCode   string    `json:"friendCode"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

// RequestUser is the other party of a friend request. It is null when that user no longer exists.
type RequestUser struct {
	DisplayName string `json:"displayName"`
	FriendCode  string `json:"friendCode"`
}

type IncomingRequest struct {
	ID         uuid.UUID                  `json:"id"`
	FromUserID uuid.UUID                  `json:"fromUserId"`
	ToUserID   uuid.UUID                  `json:"toUserId"`
	FriendCode string                     `json:"friendCode"`
	Status     models.FriendRequestStatus `json:"status"`
	CreatedAt  time.Time                  `json:"createdAt"`
	FromUser   *RequestUser               `json:"fromUser"`
}

type OutgoingRequest struct {
	ID        uuid.UUID                  `json:"id"`
	ToUserID  uuid.UUID                  `json:"toUserId"`
	Status    models.FriendRequestStatus `json:"status"`
	CreatedAt time.Time                  `json:"createdAt"`
	ToUser    *RequestUser               `json:"toUser"`
}

type SendFriendRequestResponse struct {
	Message string         `json:"message"`
	Request RequestSummary `json:"request"`
}

type RequestSummary struct {
	ID        uuid.UUID                  `json:"id"`
	ToUserID  uuid.UUID                  `json:"toUserId"`
	Status    models.FriendRequestStatus `json:"status"`
	CreatedAt time.Time                  `json:"createdAt"`
}
