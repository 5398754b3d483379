package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrUserNotFound   = errors.New("user not found")
)

type AuthService struct {
	store    *directory.Store
	verifier identity.Verifier
}

func NewAuthService(store *directory.Store, verifier identity.Verifier) *AuthService {
	return &AuthService{store: store, verifier: verifier}
}

// Login verifies the proof, registers the subject on first sight and opens a new session.
// Existing sessions of the user stay valid.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.AppID == "" || (req.ZKProof == nil && req.IdentityToken == "") {
		return nil, ErrMissingFields
	}

	proof := identity.Proof{Action: req.ActionID, Token: req.IdentityToken}
	if req.ZKProof != nil {
		proof.MerkleRoot = req.ZKProof.MerkleRoot
		proof.NullifierHash = req.ZKProof.NullifierHash
		proof.Proof = req.ZKProof.Proof
		proof.VerificationLevel = req.ZKProof.VerificationLevel
		proof.Signal = req.ZKProof.Signal
	}

	subject, err := s.verifier.Verify(ctx, proof)
	if err != nil {
		return nil, err
	}

	user, created, err := s.store.FindOrCreateUser(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if created {
		slog.Info("user registered", "user_id", user.ID.String(), "friend_code", user.FriendCode, "app_id", req.AppID)
	}

	sess, err := s.store.CreateSession(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("session created", "user_id", user.ID.String(), "session", logging.TokenPrefix(sess.Token))

	return &dto.LoginResponse{
		Success:    true,
		SessionKey: sess.Token,
		ValidUntil: sess.ExpiresAt.UnixMilli(),
		User:       toUserSummary(user),
	}, nil
}

// Authenticate resolves a bearer token to its user id.
func (s *AuthService) Authenticate(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrInvalidSession
	}
	sess, ok := s.store.GetSession(token)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}
	return sess.UserID, nil
}

func (s *AuthService) VerifySession(token string) (*dto.SessionVerifyResponse, error) {
	userID, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	user, ok := s.store.GetUserByID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.SessionVerifyResponse{Success: true, User: toUserSummary(user)}, nil
}

func (s *AuthService) Logout(token string) {
	s.store.DeleteSession(token)
}

func toUserSummary(u models.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          u.ID,
		Subject:     u.Subject,
		DisplayName: u.DisplayName,
		FriendCode:  u.FriendCode,
	}
}
