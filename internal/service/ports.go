package service

import (
	"context"

	"vocabpoll/internal/domain"
)

// Messenger delivers messages and polls to users.
// Implementations return an error wrapping domain.ErrUnauthorizedSender
// when the user blocked the bot.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, html bool) error
	// SendQuiz sends a single-answer quiz poll and returns its id
	SendQuiz(ctx context.Context, chatID int64, question string, options []string, correctOption int) (string, error)
	// SendSuggestion sends a multi-select regular poll and returns its id
	SendSuggestion(ctx context.Context, chatID int64, question string, options []string) (string, error)
}

// Scheduler owns the recurring polling trigger of each user
type Scheduler interface {
	Put(ctx context.Context, userID int64, rate domain.Rate) error
	Exists(ctx context.Context, userID int64) (bool, error)
	Delete(ctx context.Context, userID int64) error
}

// Translator proposes a translation for a source phrase
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Suggester proposes new pairs based on recently learnt ones.
// It fails with domain.ErrUpstreamFormat when the answer cannot be parsed.
type Suggester interface {
	SuggestPairs(ctx context.Context, learnt []domain.Pair, count int) ([]domain.Candidate, error)
}

// Random is the source of randomness used for quiz selection
type Random interface {
	Intn(n int) int
	Float64() float64
}

// UserRemover forgets users that can no longer be reached
type UserRemover interface {
	Remove(ctx context.Context, userID int64) error
}
