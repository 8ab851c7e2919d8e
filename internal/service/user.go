package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"

	"go.uber.org/zap"
)

// HelpText lists the commands understood by the bot
const HelpText = `I will help you to learn new words and phrases. Send me translation pairs and I will poll you on them from time to time.

/add_pair - add a new translation pair
/delete_pair - delete a translation pair
/list_pairs - show your translation pairs
/set_polling_rate_in_minutes - poll me every N minutes
/set_polling_rate_in_hours - poll me every N hours
/cancel - cancel the current operation
/help - show this message`

// UserService handles registration, removal and broadcasts
type UserService struct {
	users     repository.UserRepository
	scheduler Scheduler
	messenger Messenger
	admins    map[int64]bool
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users repository.UserRepository,
	scheduler Scheduler,
	messenger Messenger,
	adminIDs []int64,
	logger *zap.Logger,
) *UserService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &UserService{
		users:     users,
		scheduler: scheduler,
		messenger: messenger,
		admins:    admins,
		logger:    logger,
	}
}

// IsAdmin checks if the user may use admin commands
func (s *UserService) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

// Register creates the user if needed and makes sure polling is scheduled.
// Calling it again keeps the user's current schedule.
func (s *UserService) Register(ctx context.Context, userID int64, username string) (string, error) {
	if err := s.users.Create(ctx, userID, username); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	scheduled, err := s.scheduler.Exists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check schedule: %w", err)
	}
	if !scheduled {
		if err := s.scheduler.Put(ctx, userID, domain.DefaultRate); err != nil {
			return "", fmt.Errorf("failed to schedule polling: %w", err)
		}
		s.logger.Info("User registered",
			zap.Int64("user_id", userID),
			zap.String("username", username),
		)
	}

	return "Hi!\n" + HelpText, nil
}

// Get returns the user or nil
func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

// Remove stops polling the user and deletes everything stored for them
func (s *UserService) Remove(ctx context.Context, userID int64) error {
	if err := s.scheduler.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if err := s.users.DeleteCascade(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User removed", zap.Int64("user_id", userID))
	return nil
}

// Broadcast sends text to every user on behalf of an admin and returns how many received it.
// Users that blocked the bot are removed on the way.
func (s *UserService) Broadcast(ctx context.Context, callerID int64, text string) (int, error) {
	if !s.IsAdmin(callerID) {
		return 0, domain.NewUserError(domain.ErrForbidden, "This command is available to admins only")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, domain.NewUserError(domain.ErrValidation, "Send the notification text after the command")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	sent := 0
	for _, u := range users {
		err := s.messenger.SendMessage(ctx, u.ID, text, false)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, domain.ErrUnauthorizedSender):
			if err := s.Remove(ctx, u.ID); err != nil {
				s.logger.Error("Failed to remove blocked user", zap.Error(err), zap.Int64("user_id", u.ID))
			}
		default:
			s.logger.Error("Failed to notify user", zap.Error(err), zap.Int64("user_id", u.ID))
		}
	}

	s.logger.Info("Broadcast finished",
		zap.Int64("admin_id", callerID),
		zap.Int("sent", sent),
		zap.Int("users", len(users)),
	)
	return sent, nil
}
