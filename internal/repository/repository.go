package repository

import (
	"context"

	"vocabpoll/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, userID int64, username string) error
	Get(ctx context.Context, userID int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// DeleteCascade removes the user together with pairs, pending action and poll records
	DeleteCascade(ctx context.Context, userID int64) error
}

// PairRepository defines translation pair operations
type PairRepository interface {
	// Create stores a new active pair or reactivates a deactivated one.
	// Returns domain.ErrConflict when an active pair with the same source exists.
	Create(ctx context.Context, userID int64, source, target string) error
	GetActive(ctx context.Context, userID int64, source string) (*domain.Pair, error)
	// ListActive returns active pairs, newest first; limit <= 0 means no limit
	ListActive(ctx context.Context, userID int64, limit int) ([]domain.Pair, error)
	// Deactivate soft-deletes a pair and reports whether an active pair was found
	Deactivate(ctx context.Context, userID int64, source string) (bool, error)
	IncrementPollCount(ctx context.Context, userID int64, source string) error
	IncrementCorrect(ctx context.Context, userID int64, source string) error
	IncrementWrong(ctx context.Context, userID int64, source string) error
}

// ActionRepository stores at most one pending action per user
type ActionRepository interface {
	// Get returns nil when the user has no pending action
	Get(ctx context.Context, userID int64) (domain.Action, error)
	// Create fails with domain.ErrConflict when an action already exists
	Create(ctx context.Context, userID int64, action domain.Action) error
	Update(ctx context.Context, userID int64, action domain.Action) error
	// Delete reports whether an action existed
	Delete(ctx context.Context, userID int64) (bool, error)
}

// PollRepository tracks outstanding quiz polls
type PollRepository interface {
	Create(ctx context.Context, record domain.PollRecord) error
	// Get returns nil when the poll is unknown
	Get(ctx context.Context, pollID string) (*domain.PollRecord, error)
	Delete(ctx context.Context, pollID string) error
	// DeleteStale removes records older than days and returns how many were removed
	DeleteStale(ctx context.Context, days int) (int64, error)
}

// SuggestionRepository tracks outstanding suggestion polls
type SuggestionRepository interface {
	Create(ctx context.Context, record domain.SuggestionRecord) error
	// Get returns nil when the poll is unknown
	Get(ctx context.Context, pollID string) (*domain.SuggestionRecord, error)
	Delete(ctx context.Context, pollID string) error
	DeleteStale(ctx context.Context, days int) (int64, error)
}

// ScheduleRepository persists polling rates
type ScheduleRepository interface {
	Save(ctx context.Context, schedule domain.Schedule) error
	// Get returns nil when the user has no schedule
	Get(ctx context.Context, userID int64) (*domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
	Delete(ctx context.Context, userID int64) error
}
