package gemini_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/service/gemini"
	"google.golang.org/genai"
)

func TestCandidateText(t *testing.T) {
	tests := []struct {
		name      string
		candidate *genai.Candidate
		expected  string
	}{
		{name: "nil candidate", candidate: nil, expected: ""},
		{name: "no content", candidate: &genai.Candidate{}, expected: ""},
		{
			name: "joins text parts",
			candidate: &genai.Candidate{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Hello, "},
				nil,
				{Text: "world"},
			}}},
			expected: "Hello, world",
		},
		{
			name: "skips thoughts",
			candidate: &genai.Candidate{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "planning", Thought: true},
				{Text: "answer"},
			}}},
			expected: "answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, gemini.CandidateText(tt.candidate)).Equal(tt.expected)
		})
	}
}

func TestFirstCandidate(t *testing.T) {
	t.Run("returns first candidate", func(t *testing.T) {
		want := &genai.Candidate{Index: 0}
		got, err := gemini.FirstCandidate(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{want}})
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(want)
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := gemini.FirstCandidate(nil)
		gt.Error(t, err).Is(model.ErrUpstream)
	})

	t.Run("blocked prompt carries reason", func(t *testing.T) {
		_, err := gemini.FirstCandidate(&genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason:        genai.BlockedReasonProhibitedContent,
				BlockReasonMessage: "blocked",
			},
		}, goerr.V("model", "m"))
		gt.Error(t, err).Is(model.ErrUpstream)

		values := goerr.Unwrap(err).Values()
		gt.Value(t, values[model.DetailKey]).Equal(string(genai.BlockedReasonProhibitedContent))
		gt.Value(t, values["block_message"]).Equal("blocked")
		gt.Value(t, values["model"]).Equal("m")
	})
}

func TestWrapAPIError(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		err := gemini.WrapAPIError(genai.APIError{Code: 429, Message: "quota exceeded"}, "failed")
		gt.Error(t, err).Is(model.ErrUpstream)

		values := goerr.Unwrap(err).Values()
		gt.Value(t, values[model.StatusKey]).Equal(429)
		gt.Value(t, values[model.DetailKey]).Equal("quota exceeded")
	})

	t.Run("plain error", func(t *testing.T) {
		err := gemini.WrapAPIError(errors.New("dial tcp: timeout"), "failed")
		gt.Error(t, err).Is(model.ErrUpstream)

		values := goerr.Unwrap(err).Values()
		_, hasStatus := values[model.StatusKey]
		gt.Bool(t, hasStatus).False()
		gt.Value(t, values[model.DetailKey]).Equal("dial tcp: timeout")
	})
}
