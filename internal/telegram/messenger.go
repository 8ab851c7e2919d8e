package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"vocabpoll/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Messenger delivers texts and polls through the Bot API
type Messenger struct {
	bot    sender
	logger *zap.Logger
}

// NewMessenger creates a messenger on top of bot
func NewMessenger(bot *tele.Bot, logger *zap.Logger) *Messenger {
	return &Messenger{bot: bot, logger: logger}
}

// SendMessage sends a text, optionally formatted as HTML
func (m *Messenger) SendMessage(_ context.Context, chatID int64, text string, html bool) error {
	opts := []interface{}{tele.NoPreview}
	if html {
		opts = append(opts, tele.ModeHTML)
	}

	_, err := m.bot.Send(tele.ChatID(chatID), text, opts...)
	return m.mapError(err, chatID)
}

// SendQuiz sends a quiz poll and returns its id
func (m *Messenger) SendQuiz(_ context.Context, chatID int64, question string, options []string, correctOption int) (string, error) {
	poll := &tele.Poll{
		Type:          tele.PollQuiz,
		Question:      question,
		CorrectOption: correctOption,
	}
	poll.AddOptions(options...)

	return m.sendPoll(chatID, poll)
}

// SendSuggestion sends a multi-select regular poll and returns its id
func (m *Messenger) SendSuggestion(_ context.Context, chatID int64, question string, options []string) (string, error) {
	poll := &tele.Poll{
		Type:            tele.PollRegular,
		Question:        question,
		MultipleAnswers: true,
	}
	poll.AddOptions(options...)

	return m.sendPoll(chatID, poll)
}

func (m *Messenger) sendPoll(chatID int64, poll *tele.Poll) (string, error) {
	msg, err := m.bot.Send(tele.ChatID(chatID), poll)
	if err != nil {
		return "", m.mapError(err, chatID)
	}
	if msg == nil || msg.Poll == nil {
		return "", fmt.Errorf("telegram returned no poll for chat %d", chatID)
	}
	return msg.Poll.ID, nil
}

// mapError turns refusals to deliver into domain.ErrUnauthorizedSender
func (m *Messenger) mapError(err error, chatID int64) error {
	if err == nil {
		return nil
	}
	if IsUnauthorized(err) {
		m.logger.Info("User refused delivery", zap.Int64("user_id", chatID), zap.String("reason", sanitize(err)))
		return fmt.Errorf("%w: %s", domain.ErrUnauthorizedSender, sanitize(err))
	}
	return fmt.Errorf("telegram send failed: %s", sanitize(err))
}

// IsUnauthorized reports whether Telegram refused to deliver to the user
func IsUnauthorized(err error) bool {
	if errors.Is(err, tele.ErrBlockedByUser) {
		return true
	}
	var apiErr *tele.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}

// sanitize keeps bot tokens out of logs and error messages
func sanitize(err error) string {
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// PollResultFrom converts a poll update into a domain result
func PollResultFrom(p *tele.Poll) domain.PollResult {
	counts := make([]int, len(p.Options))
	for i, o := range p.Options {
		counts[i] = o.VoterCount
	}
	return domain.PollResult{
		PollID:        p.ID,
		Quiz:          p.Type == tele.PollQuiz,
		Closed:        p.Closed,
		VoterCounts:   counts,
		CorrectOption: p.CorrectOption,
	}
}
