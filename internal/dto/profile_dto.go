package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	DisplayName  *string `json:"displayName"`
	ProfileImage *string `json:"profileImage"`
}

type ProfileResponse struct {
	User ProfileUser `json:"user"`
}

type ProfileUser struct {
	ID           uuid.UUID `json:"id"`
	Subject      string    `json:"subject"`
	DisplayName  string    `json:"displayName"`
	ProfileImage string    `json:"profileImage,omitempty"`
	FriendCode   string    `json:"friendCode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
