package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/models"
	"github.com/google/uuid"
)

const (
	MaxDisplayNameLength  = 32
	MaxProfileImageLength = 1 << 20
)

var (
	ErrInvalidDisplayName  = errors.New("display name must be between 1 and 32 characters")
	ErrInvalidProfileImage = errors.New("profile image must be an http(s) URL or an image data URI under 1 MiB")
)

// ContentRejectedError carries the moderation reason for a refused display name.
type ContentRejectedError struct {
	Reason  string
	Message string
}

func (e *ContentRejectedError) Error() string { return e.Message }

type ProfileService struct {
	store      *directory.Store
	moderation *ModerationService
}

func NewProfileService(store *directory.Store, moderation *ModerationService) *ProfileService {
	return &ProfileService{store: store, moderation: moderation}
}

func (s *ProfileService) Get(userID uuid.UUID) (*dto.ProfileResponse, error) {
	u, ok := s.store.GetUserByID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.ProfileResponse{User: toProfileUser(u)}, nil
}

// Update validates and applies the provided fields. Absent or blank fields keep their value.
func (s *ProfileService) Update(userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	var upd models.UserUpdate

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name != "" {
			if utf8.RuneCountInString(name) > MaxDisplayNameLength {
				return nil, ErrInvalidDisplayName
			}
			if ok, reason := s.moderation.FilterContent(name); !ok {
				return nil, &ContentRejectedError{Reason: reason, Message: s.moderation.GetRejectionMessage(reason)}
			}
			upd.DisplayName = &name
		}
	}

	if req.ProfileImage != nil {
		img := strings.TrimSpace(*req.ProfileImage)
		if img != "" {
			if !validProfileImage(img) {
				return nil, ErrInvalidProfileImage
			}
			upd.ProfileImage = &img
		}
	}

	u, ok := s.store.UpdateUser(userID, upd)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.ProfileResponse{User: toProfileUser(u)}, nil
}

func validProfileImage(img string) bool {
	if len(img) > MaxProfileImageLength {
		return false
	}
	return strings.HasPrefix(img, "https://") ||
		strings.HasPrefix(img, "http://") ||
		strings.HasPrefix(img, "data:image/")
}

func toProfileUser(u models.User) dto.ProfileUser {
	return dto.ProfileUser{
		ID:           u.ID,
		Subject:      u.Subject,
		DisplayName:  u.DisplayName,
		ProfileImage: u.ProfileImage,
		FriendCode:   u.FriendCode,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
