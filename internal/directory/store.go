// Package directory holds users, sessions and the friend graph in process memory.
// The zero state is empty and nothing survives a restart.
package directory

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique friend code")
	ErrSubjectTaken       = errors.New("subject already registered")
	ErrTokenCollision     = errors.New("could not allocate a unique session token")
	ErrFriendCodeNotFound = errors.New("friend code not found")
	ErrSelfRequest        = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrRequestResolved    = errors.New("friend request already resolved")
	ErrInvalidStatus      = errors.New("invalid friend request status")
)

const (
	DefaultSessionTTL      = 24 * time.Hour
	DefaultMaxCodeAttempts = 32
)

// Store is safe for concurrent use. Every exported method runs under a single lock,
// so check-then-create sequences are atomic.
type Store struct {
	mu sync.RWMutex

	users          map[uuid.UUID]*models.User
	sessions       map[string]models.Session
	friendships    []models.Friendship
	requests       map[uuid.UUID]*models.FriendRequest
	requestOrder   []uuid.UUID
	codeIndex      map[string]uuid.UUID
	subjectIndex   map[string]uuid.UUID
	now            func() time.Time
	random         io.Reader
	sessionTTL     time.Duration
	maxCodeAttempt int
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithRandom sets the entropy source for friend codes, session tokens and display names.
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.random = r }
}

func WithMaxCodeAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxCodeAttempt = n
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		users:          make(map[uuid.UUID]*models.User),
		sessions:       make(map[string]models.Session),
		requests:       make(map[uuid.UUID]*models.FriendRequest),
		codeIndex:      make(map[string]uuid.UUID),
		subjectIndex:   make(map[string]uuid.UUID),
		now:            time.Now,
		random:         rand.Reader,
		sessionTTL:     DefaultSessionTTL,
		maxCodeAttempt: DefaultMaxCodeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- users ---

// CreateUser registers a new user for subject. A subject maps to at most one user.
func (s *Store) CreateUser(subject string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.subjectIndex[subject]; taken {
		return models.User{}, ErrSubjectTaken
	}
	return s.createUserLocked(subject)
}

// FindOrCreateUser returns the user registered for subject, creating it on first sight.
// The boolean is true when a new user was created.
func (s *Store) FindOrCreateUser(subject string) (models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.subjectIndex[subject]; ok {
		if u, ok := s.users[id]; ok {
			return *u, false, nil
		}
	}
	u, err := s.createUserLocked(subject)
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

func (s *Store) createUserLocked(subject string) (models.User, error) {
	code, err := s.generateFriendCode()
	if err != nil {
		return models.User{}, err
	}
	suffix, err := s.randomInt(10000)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to pick display name: %w", err)
	}

	now := s.now()
	u := &models.User{
		ID:          uuid.New(),
		Subject:     subject,
		DisplayName: fmt.Sprintf("User%d", suffix),
		FriendCode:  code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[u.ID] = u
	s.codeIndex[code] = u.ID
	s.subjectIndex[subject] = u.ID
	return *u, nil
}

func (s *Store) GetUserByID(id uuid.UUID) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) GetUserBySubject(subject string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.subjectIndex[subject]
	if !ok {
		return models.User{}, false
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) GetUserByFriendCode(code string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByCodeLocked(code)
	if u == nil {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) userByCodeLocked(code string) *models.User {
	id, ok := s.codeIndex[code]
	if !ok {
		return nil
	}
	return s.users[id]
}

// UpdateUser merges the provided profile fields and bumps UpdatedAt.
func (s *Store) UpdateUser(id uuid.UUID, upd models.UserUpdate) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	if upd.DisplayName != nil && *upd.DisplayName != "" {
		u.DisplayName = *upd.DisplayName
	}
	if upd.ProfileImage != nil && *upd.ProfileImage != "" {
		u.ProfileImage = *upd.ProfileImage
	}
	u.UpdatedAt = s.now()
	return *u, true
}

// --- sessions ---

func (s *Store) CreateSession(userID uuid.UUID) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]byte, 32)
	for attempt := 0; attempt < s.maxCodeAttempt; attempt++ {
		if _, err := io.ReadFull(s.random, raw); err != nil {
			return models.Session{}, fmt.Errorf("failed to generate session token: %w", err)
		}
		token := base64.RawURLEncoding.EncodeToString(raw)
		if _, exists := s.sessions[token]; exists {
			continue
		}

		sess := models.Session{
			Token:     token,
			UserID:    userID,
			ExpiresAt: s.now().Add(s.sessionTTL),
		}
		s.sessions[token] = sess
		return sess, nil
	}
	return models.Session{}, ErrTokenCollision
}

// GetSession returns the session for token. Expired sessions are removed on lookup.
func (s *Store) GetSession(token string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return models.Session{}, false
	}
	if !sess.ValidAt(s.now()) {
		delete(s.sessions, token)
		return models.Session{}, false
	}
	return sess, true
}

func (s *Store) DeleteSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// --- friend requests ---

func (s *Store) CreateFriendRequest(fromUserID uuid.UUID, friendCode string) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.userByCodeLocked(friendCode)
	if target == nil {
		return models.FriendRequest{}, ErrFriendCodeNotFound
	}
	if target.ID == fromUserID {
		return models.FriendRequest{}, ErrSelfRequest
	}
	if s.friendsLocked(fromUserID, target.ID) {
		return models.FriendRequest{}, ErrAlreadyFriends
	}

	// A pending request in either direction is returned as is. Rejected ones do not block a
	// new attempt; accepted ones are covered by the friendship check above.
	for _, id := range s.requestOrder {
		r := s.requests[id]
		if r.Involves(fromUserID, target.ID) && r.Status == models.FriendRequestPending {
			return *r, nil
		}
	}

	r := &models.FriendRequest{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   target.ID,
		FriendCode: friendCode,
		Status:     models.FriendRequestPending,
		CreatedAt:  s.now(),
	}
	s.requests[r.ID] = r
	s.requestOrder = append(s.requestOrder, r.ID)
	return *r, nil
}

func (s *Store) GetFriendRequest(id uuid.UUID) (models.FriendRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return models.FriendRequest{}, false
	}
	return *r, true
}

// GetFriendRequests lists pending requests addressed to userID, oldest first.
func (s *Store) GetFriendRequests(userID uuid.UUID) []models.FriendRequest {
	return s.pendingWhere(func(r *models.FriendRequest) bool { return r.ToUserID == userID })
}

// GetOutgoingFriendRequests lists pending requests sent by userID, oldest first.
func (s *Store) GetOutgoingFriendRequests(userID uuid.UUID) []models.FriendRequest {
	return s.pendingWhere(func(r *models.FriendRequest) bool { return r.FromUserID == userID })
}

func (s *Store) pendingWhere(match func(*models.FriendRequest) bool) []models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FriendRequest, 0)
	for _, id := range s.requestOrder {
		r := s.requests[id]
		if r.Status == models.FriendRequestPending && match(r) {
			out = append(out, *r)
		}
	}
	return out
}

// UpdateFriendRequest moves a pending request to accepted or rejected. Acceptance
// writes the friendship in both directions. Resolved requests cannot change again.
func (s *Store) UpdateFriendRequest(id uuid.UUID, status models.FriendRequestStatus) error {
	if status != models.FriendRequestAccepted && status != models.FriendRequestRejected {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if r.Status != models.FriendRequestPending {
		return ErrRequestResolved
	}

	now := s.now()
	r.Status = status
	r.ResolvedAt = &now

	if status == models.FriendRequestAccepted {
		s.addEdgeLocked(r.FromUserID, r.ToUserID, now)
		s.addEdgeLocked(r.ToUserID, r.FromUserID, now)
	}
	return nil
}

// --- friendships ---

// GetFriends resolves userID's accepted edges to users. Edges pointing at missing users are skipped.
func (s *Store) GetFriends(userID uuid.UUID) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0)
	for _, f := range s.friendships {
		if f.UserID != userID || f.Status != models.FriendshipAccepted {
			continue
		}
		if u, ok := s.users[f.FriendID]; ok {
			out = append(out, *u)
		}
	}
	return out
}

func (s *Store) addEdgeLocked(from, to uuid.UUID, at time.Time) {
	for _, f := range s.friendships {
		if f.UserID == from && f.FriendID == to {
			return
		}
	}
	s.friendships = append(s.friendships, models.Friendship{
		ID:        uuid.New(),
		UserID:    from,
		FriendID:  to,
		Status:    models.FriendshipAccepted,
		CreatedAt: at,
	})
}

func (s *Store) friendsLocked(a, b uuid.UUID) bool {
	for _, f := range s.friendships {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			return true
		}
	}
	return false
}

// --- stats ---

type Stats struct {
	Users          int `json:"users"`
	Sessions       int `json:"sessions"`
	Friendships    int `json:"friendships"`
	FriendRequests int `json:"friend_requests"`
}

// Stats counts stored records. Expired sessions that were never looked up are included.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Users:          len(s.users),
		Sessions:       len(s.sessions),
		Friendships:    len(s.friendships),
		FriendRequests: len(s.requests),
	}
}

func (s *Store) randomInt(max int64) (int64, error) {
	n, err := rand.Int(s.random, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
