package memo

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
)

const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "qwen-qwq-32b"

	groqTemperature = 0.5
	groqTopP        = 0.95
)

// Groq calls an OpenAI-compatible chat completion endpoint
type Groq struct {
	client *openai.Client
	model  string
}

var _ Model = &Groq{}

type GroqOption func(*openai.ClientConfig)

// WithGroqBaseURL points the client at another OpenAI-compatible endpoint
func WithGroqBaseURL(url string) GroqOption {
	return func(cfg *openai.ClientConfig) {
		cfg.BaseURL = url
	}
}

func NewGroq(apiKey, modelName string, opts ...GroqOption) (*Groq, error) {
	if apiKey == "" {
		return nil, goerr.New("groq API key is required")
	}
	if modelName == "" {
		modelName = DefaultGroqModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = GroqBaseURL
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Groq{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}, nil
}

func (g *Groq) Name() string     { return g.model }
func (g *Groq) UsesSearch() bool { return false }

func (g *Groq) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: "Generate an investment memo:\n" + prompt.User},
		},
		Temperature: groqTemperature,
		TopP:        groqTopP,
	})
	if err != nil {
		return "", wrapOpenAIError(err, g.model)
	}

	if len(resp.Choices) == 0 {
		return "", goerr.Wrap(model.ErrUpstream, "chat completion returned no choices", goerr.V("model", g.model))
	}

	msg := resp.Choices[0].Message
	if msg.ReasoningContent != "" {
		logging.From(ctx).Debug("memo reasoning", "model", g.model, "reasoning", msg.ReasoningContent)
	}

	return msg.Content, nil
}

func wrapOpenAIError(err error, modelName string) error {
	opts := []goerr.Option{goerr.V("model", modelName)}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		opts = append(opts,
			goerr.V(model.StatusKey, apiErr.HTTPStatusCode),
			goerr.V(model.DetailKey, apiErr.Message))
	case errors.As(err, &reqErr):
		opts = append(opts,
			goerr.V(model.StatusKey, reqErr.HTTPStatusCode),
			goerr.V(model.DetailKey, reqErr.Error()))
	default:
		opts = append(opts, goerr.V(model.DetailKey, err.Error()))
	}

	return goerr.Wrap(model.ErrUpstream, "failed to generate memo", opts...)
}
