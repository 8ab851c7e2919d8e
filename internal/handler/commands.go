package handler

import (
	"context"
	"fmt"
	"strings"

	"vocabpoll/internal/service"

	"go.uber.org/zap"
)

type reply struct {
	messages []string
	html     bool
}

func text(msg string) reply {
	if msg == "" {
		return reply{}
	}
	return reply{messages: []string{msg}}
}

type command struct {
	prefix string
	run    func(ctx context.Context, userID int64, username, text string) (reply, error)
}

// commands are matched by literal prefix in this order
func (h *Handler) commands() []command {
	return []command{
		{prefix: "/start", run: h.start},
		{prefix: "/add_pair", run: h.addPair},
		{prefix: "/delete_pair", run: h.deletePair},
		{prefix: "/list_pairs", run: h.listPairs},
		{prefix: "/cancel", run: h.cancel},
		{prefix: "/set_polling_rate", run: h.setPollingRate},
		{prefix: "/notify_users", run: h.notifyUsers},
		{prefix: "/help", run: h.help},
	}
}

// dispatch routes text to the first matching command or to the pending action
func (h *Handler) dispatch(ctx context.Context, userID int64, username, text string) (reply, error) {
	for _, cmd := range h.commands() {
		if strings.HasPrefix(text, cmd.prefix) {
			h.logger.Info("Command received",
				zap.Int64("user_id", userID),
				zap.String("command", cmd.prefix),
				zap.String("request_id", requestIDFrom(ctx)),
			)
			return cmd.run(ctx, userID, username, text)
		}
	}
	return h.continueAction(ctx, userID, text)
}

func (h *Handler) start(ctx context.Context, userID int64, username, _ string) (reply, error) {
	msg, err := h.users.Register(ctx, userID, username)
	return text(msg), err
}

func (h *Handler) help(context.Context, int64, string, string) (reply, error) {
	return text(service.HelpText), nil
}

func (h *Handler) addPair(ctx context.Context, userID int64, _, _ string) (reply, error) {
	msg, err := h.actions.StartAddPair(ctx, userID)
	return text(msg), err
}

func (h *Handler) deletePair(ctx context.Context, userID int64, _, _ string) (reply, error) {
	msg, err := h.actions.StartDeletePair(ctx, userID)
	return text(msg), err
}

func (h *Handler) listPairs(ctx context.Context, userID int64, _, _ string) (reply, error) {
	messages, err := h.pairs.ListPairs(ctx, userID)
	if err != nil {
		return reply{}, err
	}
	return reply{messages: messages, html: true}, nil
}

func (h *Handler) cancel(ctx context.Context, userID int64, _, _ string) (reply, error) {
	msg, err := h.actions.Cancel(ctx, userID)
	return text(msg), err
}

// setPollingRate handles /set_polling_rate_in_<unit>
func (h *Handler) setPollingRate(ctx context.Context, userID int64, _, msg string) (reply, error) {
	rest := strings.TrimPrefix(msg, "/set_polling_rate")
	rest = strings.TrimPrefix(rest, "_in_")

	unit := ""
	if fields := strings.Fields(rest); len(fields) > 0 {
		// drop the bot mention of /cmd@bot
		unit, _, _ = strings.Cut(fields[0], "@")
	}

	out, err := h.actions.StartPollingRate(ctx, userID, unit)
	return text(out), err
}

func (h *Handler) notifyUsers(ctx context.Context, userID int64, _, msg string) (reply, error) {
	body := strings.TrimPrefix(msg, "/notify_users")

	sent, err := h.users.Broadcast(ctx, userID, body)
	if err != nil {
		return reply{}, err
	}
	return text(fmt.Sprintf("Notification is sent to %d users", sent)), nil
}

func (h *Handler) continueAction(ctx context.Context, userID int64, msg string) (reply, error) {
	out, err := h.actions.Continue(ctx, userID, msg)
	return text(out), err
}
