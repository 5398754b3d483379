package dto

import (
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/google/uuid"
)

type ZKProof struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Signal            string `json:"signal,omitempty"`
}

type LoginRequest struct {
	AppID         string   `json:"appId"`
	ZKProof       *ZKProof `json:"zkProof"`
	ActionID      string   `json:"actionId,omitempty"`
	IdentityToken string   `json:"identityToken,omitempty"`
}

type LoginResponse struct {
	Success    bool        `json:"success"`
	SessionKey string      `json:"sessionKey"`
	ValidUntil int64       `json:"validUntil"`
	User       UserSummary `json:"user"`
}

type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	DisplayName string    `json:"displayName"`
	FriendCode  string    `json:"friendCode"`
}

type SessionVerifyRequest struct {
	SessionKey string `json:"sessionKey"`
}

type SessionVerifyResponse struct {
	Success bool        `json:"success"`
	User    UserSummary `json:"user"`
}

type LoginInfoResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	LogDB     string          `json:"log_db"`
	Store     directory.Stats `json:"store"`
}
