package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
)

// UserService implements mock authentication: any name or email logs in, nothing is verified.
type UserService struct {
	collections *repository.Collections
	logger      *logger.Logger
	now         func() time.Time
	mu          sync.Mutex
}

// NewUserService creates a new user service.
// Parameters:
//   - kv: key-value substrate shared with the meme store.
//   - log: logger instance.
//   - now: clock; nil uses time.Now.
//
// Returns:
//   - *UserService: initialized service.
func NewUserService(kv repository.KVStore, log *logger.Logger, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &UserService{
		collections: repository.NewCollections(kv, log),
		logger:      log,
		now:         now,
	}
}

// Login creates a fresh profile. The name falls back to the local part of email.
func (s *UserService) Login(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(strings.TrimSpace(email), "@")
	}
	if name == "" {
		return nil, fmt.Errorf("name or email is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.collections.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("user-%d", s.now().UnixMilli())
	if _, taken := users[id]; taken {
		id = id + "-" + uuid.New().String()[:8]
	}

	user := domain.User{ID: id, Name: name}
	users[id] = user
	if err := s.collections.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	s.logger.WithField(logger.FieldUserID, id).Info("User logged in")
	return &user, nil
}

// Get returns the profile for id, nil if unknown.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	users, err := s.collections.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ProfileUpdate carries editable profile fields; nil fields are left unchanged.
type ProfileUpdate struct {
	Name           *string `json:"name"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}

// UpdateProfile applies update to id's profile. It returns nil when the user is unknown.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.collections.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[id]
	if !ok {
		return nil, nil
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}

	users[id] = user
	if err := s.collections.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}
	return &user, nil
}
