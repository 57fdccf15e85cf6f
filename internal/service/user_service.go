package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etuitions-server/internal/broker"
	"etuitions-server/internal/models"
	"etuitions-server/internal/store"
	"etuitions-server/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserStore persists user accounts
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserService handles account registration
type UserService struct {
	users  UserStore
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewUserService creates a new user service. events may be nil.
func NewUserService(users UserStore, events *broker.EventPublisher) *UserService {
	return &UserService{
		users:  users,
		events: events,
		logger: util.GetLogger(),
	}
}

// RegisterRequest is a signup payload
type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}

// Register creates a user unless the email is already registered. Returns
// the stored user and whether this call created it. The friendly path is the
// advisory lookup; the unique index on email settles concurrent signups.
func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, bool, error) {
	existing, err := us.users.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("user lookup failed: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
		Role:  req.Role,
	}
	if user.Role == "" {
		user.Role = "student"
	}

	err = us.users.InsertUser(ctx, user)
	if errors.Is(err, store.ErrDuplicateEmail) {
		// Lost the race to a concurrent signup.
		existing, lookupErr := us.users.GetUserByEmail(ctx, req.Email)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("user lookup failed: %w", lookupErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("user insert failed: %w", err)
	}

	util.UsersRegisteredTotal.Inc()
	us.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	if us.events != nil {
		event := &models.UserRegisteredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeUserRegistered,
				Timestamp: time.Now(),
			},
			UserID: user.ID,
			Email:  user.Email,
		}
		if err := us.events.PublishUserRegistered(ctx, event); err != nil {
			us.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
		}
	}

	return user, true, nil
}
