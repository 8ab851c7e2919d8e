package testutil

import (
	"fmt"
	"time"

	"vocabpoll/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, username string) *domain.User {
	return &domain.User{
		ID:        userID,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// NewTestPair creates an active test pair
func NewTestPair(userID int64, source, target string, pollCount int) domain.Pair {
	return domain.Pair{
		UserID:    userID,
		Source:    source,
		Target:    target,
		PollCount: pollCount,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// NewTestPairs creates n active pairs named word1..wordN / слово1..словоN
func NewTestPairs(userID int64, n int) []domain.Pair {
	pairs := make([]domain.Pair, 0, n)
	for i := 1; i <= n; i++ {
		pairs = append(pairs, NewTestPair(userID, fmt.Sprintf("word%d", i), fmt.Sprintf("слово%d", i), i-1))
	}
	return pairs
}

// SequenceRandom returns queued values and falls back to zero when they run out
type SequenceRandom struct {
	Ints   []int
	Floats []float64
}

// Intn returns the next queued int modulo n
func (r *SequenceRandom) Intn(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}

// Float64 returns the next queued float
func (r *SequenceRandom) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}
