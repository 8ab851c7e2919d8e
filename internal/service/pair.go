package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"
)

const (
	// maxMessageLength is the Telegram limit for a single text message
	maxMessageLength = 4096
	// maxListedText bounds each side of a listed pair so that one line always fits a message
	maxListedText = 300
)

// PairService renders the vocabulary of a user
type PairService struct {
	pairs repository.PairRepository
}

// NewPairService creates a new pair service
func NewPairService(pairs repository.PairRepository) *PairService {
	return &PairService{pairs: pairs}
}

// ListPairs returns the user's active pairs as HTML messages, least polled first.
// Long vocabularies are split so that every message fits the Telegram limit.
func (s *PairService) ListPairs(ctx context.Context, userID int64) ([]string, error) {
	pairs, err := s.pairs.ListActive(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}

	if len(pairs) == 0 {
		return []string{"You have no translation pairs yet. Add one with /add_pair"}, nil
	}

	var messages []string
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Your translation pairs (%d)</b>\n\n", len(pairs))

	lines := 0
	for _, p := range domain.SortByPollCount(pairs) {
		line := formatPair(p)
		if lines > 0 && b.Len()+len(line) > maxMessageLength {
			messages = append(messages, b.String())
			b.Reset()
			lines = 0
		}
		b.WriteString(line)
		lines++
	}
	messages = append(messages, b.String())

	return messages, nil
}

func formatPair(p domain.Pair) string {
	return fmt.Sprintf("%s - %s <i>(polled %d times, correct %d, wrong %d)</i>\n",
		html.EscapeString(truncate(p.Source, maxListedText)),
		html.EscapeString(truncate(p.Target, maxListedText)),
		p.PollCount,
		p.CorrectCount,
		p.WrongCount,
	)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
