package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vocabpoll/internal/domain"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const temperature = 0.25

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client translates phrases and suggests new pairs with a chat model
type Client struct {
	api        chatCompleter
	model      string
	sourceLang string
	targetLang string
	logger     *zap.Logger
}

// New creates a client for the OpenAI chat API
func New(apiKey, model, sourceLang, targetLang string, logger *zap.Logger) *Client {
	return newClient(openai.NewClient(apiKey), model, sourceLang, targetLang, logger)
}

func newClient(api chatCompleter, model, sourceLang, targetLang string, logger *zap.Logger) *Client {
	return &Client{
		api:        api,
		model:      model,
		sourceLang: sourceLang,
		targetLang: targetLang,
		logger:     logger,
	}
}

// Translate returns a translation of text to the target language
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following %s word or phrase to %s. Reply with the translation only.\n\n%s",
		c.sourceLang, c.targetLang, text,
	)

	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(answer), `"'`), nil
}

// SuggestPairs asks for count new pairs for someone who recently learnt learnt
func (c *Client) SuggestPairs(ctx context.Context, learnt []domain.Pair, count int) ([]domain.Candidate, error) {
	var recent strings.Builder
	for _, p := range learnt {
		fmt.Fprintf(&recent, "%s - %s; ", p.Source, p.Target)
	}

	prompt := fmt.Sprintf(
		"Generate %d words/phrases in %s with translation to %s in json format "+
			"with array of 2 string to learn for a person who last learned words/phrases: %s.",
		count, c.sourceLang, c.targetLang, recent.String(),
	)

	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates(answer)
	if err != nil {
		c.logger.Debug("Unparseable suggestions", zap.String("answer", answer))
		return nil, err
	}
	return candidates, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrUpstreamFormat)
	}
	return resp.Choices[0].Message.Content, nil
}

// parseCandidates reads a JSON array of [source, target] arrays,
// tolerating a surrounding markdown code fence
func parseCandidates(answer string) ([]domain.Candidate, error) {
	body := strings.TrimSpace(answer)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var raw [][]string
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: invalid json at offset %d", domain.ErrUpstreamFormat, syntaxErr.Offset)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFormat, err)
	}

	candidates := make([]domain.Candidate, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: entry %d has %d elements", domain.ErrUpstreamFormat, i, len(pair))
		}
		candidates = append(candidates, domain.Candidate{Source: pair[0], Target: pair[1]})
	}
	return candidates, nil
}
