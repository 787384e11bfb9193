package memo

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/service/gemini"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash-001"

// SearchGrounded calls Gemini with the Google Search tool enabled
type SearchGrounded struct {
	models gemini.ContentGenerator
	model  string
}

var _ Model = &SearchGrounded{}

func NewSearchGrounded(models gemini.ContentGenerator, modelName string) *SearchGrounded {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &SearchGrounded{
		models: models,
		model:  modelName,
	}
}

func (s *SearchGrounded) Name() string     { return s.model }
func (s *SearchGrounded) UsesSearch() bool { return true }

func (s *SearchGrounded) Generate(ctx context.Context, prompt Prompt) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(prompt.User), config)
	if err != nil {
		return "", gemini.WrapAPIError(err, "failed to generate memo", goerr.V("model", s.model))
	}

	candidate, err := gemini.FirstCandidate(resp, goerr.V("model", s.model))
	if err != nil {
		return "", err
	}

	logger := logging.From(ctx)
	if md := candidate.GroundingMetadata; md != nil {
		logger.Debug("memo grounded by search",
			"queries", md.WebSearchQueries,
			"chunks", len(md.GroundingChunks))
	} else {
		logger.Debug("memo response has no grounding metadata")
	}

	return gemini.CandidateText(candidate), nil
}
