package memo

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

// LLM runs the memo prompt through a gollem session
type LLM struct {
	client gollem.LLMClient
	name   string
}

var _ Model = &LLM{}

// NewLLM wraps an existing gollem client. name is reported as the memo model.
func NewLLM(client gollem.LLMClient, name string) (*LLM, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &LLM{client: client, name: name}, nil
}

// NewGemini creates a gollem Gemini client on Vertex AI
func NewGemini(ctx context.Context, projectID, location, modelName string) (*LLM, error) {
	if projectID == "" {
		return nil, goerr.New("gemini project ID is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := gemini.New(ctx, projectID, location, gemini.WithModel(modelName))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return NewLLM(client, modelName)
}

func (l *LLM) Name() string     { return l.name }
func (l *LLM) UsesSearch() bool { return false }

func (l *LLM) Generate(ctx context.Context, prompt Prompt) (string, error) {
	session, err := l.client.NewSession(ctx,
		gollem.WithSessionSystemPrompt(prompt.System),
	)
	if err != nil {
		return "", goerr.Wrap(model.ErrUpstream, "failed to create LLM session",
			goerr.V("model", l.name),
			goerr.V(model.DetailKey, err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.User))
	if err != nil {
		return "", goerr.Wrap(model.ErrUpstream, "failed to generate memo",
			goerr.V("model", l.name),
			goerr.V(model.DetailKey, err.Error()))
	}

	return strings.Join(resp.Texts, ""), nil
}
