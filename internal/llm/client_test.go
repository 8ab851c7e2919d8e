package llm

import (
	"context"
	"errors"
	"testing"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/testutil"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	content  string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func newTestClient(f *fakeCompleter) *Client {
	return newClient(f, "gpt-4", "English", "Ukrainian", testutil.NewTestLogger())
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected []domain.Candidate
		wantErr  bool
	}{
		{
			name:   "plain json",
			answer: `[["good morning", "доброго ранку"], ["thanks", "дякую"]]`,
			expected: []domain.Candidate{
				{Source: "good morning", Target: "доброго ранку"},
				{Source: "thanks", Target: "дякую"},
			},
		},
		{
			name:     "fenced json",
			answer:   "```json\n[[\"thanks\", \"дякую\"]]\n```",
			expected: []domain.Candidate{{Source: "thanks", Target: "дякую"}},
		},
		{
			name:    "prose",
			answer:  "Sure! Here are some words",
			wantErr: true,
		},
		{
			name:    "wrong arity",
			answer:  `[["thanks"]]`,
			wantErr: true,
		},
		{
			name:    "object instead of array",
			answer:  `{"thanks": "дякую"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := parseCandidates(tt.answer)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUpstreamFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, candidates)
		})
	}
}

func TestClient_SuggestPairs(t *testing.T) {
	f := &fakeCompleter{content: `[["thanks", "дякую"]]`}
	c := newTestClient(f)

	candidates, err := c.SuggestPairs(context.Background(), []domain.Pair{{Source: "hello", Target: "привіт"}}, 5)

	require.NoError(t, err)
	assert.Equal(t, []domain.Candidate{{Source: "thanks", Target: "дякую"}}, candidates)
	require.Len(t, f.requests, 1)
	assert.Equal(t, "gpt-4", f.requests[0].Model)
	assert.Contains(t, f.requests[0].Messages[0].Content, "Generate 5 words/phrases in English with translation to Ukrainian")
	assert.Contains(t, f.requests[0].Messages[0].Content, "hello - привіт; ")
}

func TestClient_Translate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		err      error
		expected string
		wantErr  bool
	}{
		{name: "trims quotes", content: " \"привіт\"\n", expected: "привіт"},
		{name: "api error", err: errors.New("rate limited"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeCompleter{content: tt.content, err: tt.err})

			translation, err := c.Translate(context.Background(), "hello")

			if tt.wantErr {
				assert.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrUpstreamFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, translation)
		})
	}
}
