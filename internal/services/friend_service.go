package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidFriendCode = errors.New("friend code must be 6 letters or digits")
	ErrInvalidAction     = errors.New("action must be accept or reject")
	ErrInvalidRequestID  = errors.New("invalid request id")
)

type FriendService struct {
	store *directory.Store
}

func NewFriendService(store *directory.Store) *FriendService {
	return &FriendService{store: store}
}

// Overview lists the user's friends, incoming pending requests and sent pending requests.
func (s *FriendService) Overview(userID uuid.UUID) *dto.FriendsResponse {
	friends := s.store.GetFriends(userID)
	incoming := s.store.GetFriendRequests(userID)
	outgoing := s.store.GetOutgoingFriendRequests(userID)

	resp := &dto.FriendsResponse{
		Friends:  make([]dto.FriendSummary, 0, len(friends)),
		Requests: make([]dto.IncomingRequest, 0, len(incoming)),
		Sent:     make([]dto.OutgoingRequest, 0, len(outgoing)),
	}
	for _, f := range friends {
		resp.Friends = append(resp.Friends, dto.FriendSummary{
			ID:           f.ID,
			DisplayName:  f.DisplayName,
			FriendCode:   f.FriendCode,
			ProfileImage: f.ProfileImage,
		})
	}
	for _, r := range incoming {
		resp.Requests = append(resp.Requests, dto.IncomingRequest{
			ID:         r.ID,
			FromUserID: r.FromUserID,
			ToUserID:   r.ToUserID,
			FriendCode: r.FriendCode,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt,
			FromUser:   s.requestUser(r.FromUserID),
		})
	}
	for _, r := range outgoing {
		resp.Sent = append(resp.Sent, dto.OutgoingRequest{
			ID:        r.ID,
			ToUserID:  r.ToUserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			ToUser:    s.requestUser(r.ToUserID),
		})
	}
	return resp
}

func (s *FriendService) requestUser(id uuid.UUID) *dto.RequestUser {
	u, ok := s.store.GetUserByID(id)
	if !ok {
		return nil
	}
	return &dto.RequestUser{DisplayName: u.DisplayName, FriendCode: u.FriendCode}
}

// SendRequest normalizes the code and asks the store for a request. An existing pending
// request between the two users is returned instead of a new one.
func (s *FriendService) SendRequest(userID uuid.UUID, rawCode string) (*dto.SendFriendRequestResponse, error) {
	code := directory.NormalizeFriendCode(rawCode)
	if !directory.ValidFriendCode(code) {
		return nil, ErrInvalidFriendCode
	}

	r, err := s.store.CreateFriendRequest(userID, code)
	if err != nil {
		return nil, err
	}

	return &dto.SendFriendRequestResponse{
		Message: "Friend request sent successfully",
		Request: dto.RequestSummary{
			ID:        r.ID,
			ToUserID:  r.ToUserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		},
	}, nil
}

// Resolve accepts or rejects a request addressed to userID. Requests addressed to someone
// else are reported as not found.
func (s *FriendService) Resolve(userID uuid.UUID, rawID, action string) (string, error) {
	var status models.FriendRequestStatus
	switch action {
	case "accept":
		status = models.FriendRequestAccepted
	case "reject":
		status = models.FriendRequestRejected
	default:
		return "", ErrInvalidAction
	}

	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return "", ErrInvalidRequestID
	}

	r, ok := s.store.GetFriendRequest(requestID)
	if !ok || r.ToUserID != userID {
		return "", directory.ErrRequestNotFound
	}

	if err := s.store.UpdateFriendRequest(requestID, status); err != nil {
		return "", err
	}
	return "Friend request " + action + "ed successfully", nil
}
