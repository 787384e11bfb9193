package memo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/service/memo"
	"google.golang.org/genai"
)

func TestPromptBuilder(t *testing.T) {
	b := memo.NewPromptBuilder()

	t.Run("plain prompt", func(t *testing.T) {
		p := b.Build("Acme sells rockets.", false)
		for _, section := range []string{"**Value Proposition**", "**Market Opportunity**", "**Financials**", "**Risks**"} {
			gt.S(t, p.System).Contains(section)
		}
		gt.S(t, p.User).Contains("Base your memo solely on the following content:\nAcme sells rockets.")
		gt.S(t, p.User).NotContains("**Sources**")
	})

	t.Run("citation prompt", func(t *testing.T) {
		p := b.Build("Acme sells rockets.", true)
		gt.S(t, p.User).Contains("[1], [2]")
		gt.S(t, p.User).Contains("**Sources**")
		gt.True(t, strings.Index(p.User, "Acme sells rockets.") < strings.Index(p.User, "**Sources**"))
	})
}

type mockModel struct {
	mu      sync.Mutex
	output  string
	err     error
	search  bool
	prompts []memo.Prompt
}

func (m *mockModel) Name() string     { return "mock-model" }
func (m *mockModel) UsesSearch() bool { return m.search }
func (m *mockModel) Generate(ctx context.Context, prompt memo.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.output, m.err
}

func TestGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m := &mockModel{output: "**Value Proposition** great"}
		result := memo.New(m).Generate(ctx, "deck text")

		gt.Value(t, result.Failure).Nil()
		gt.Value(t, result.Memo).Equal("**Value Proposition** great")
		gt.Value(t, result.Model).Equal("mock-model")
		gt.Array(t, m.prompts).Length(1).Required()
		gt.S(t, m.prompts[0].User).Contains("deck text")
		gt.S(t, m.prompts[0].User).NotContains("**Sources**")
	})

	t.Run("search model gets citation instruction", func(t *testing.T) {
		m := &mockModel{output: "memo", search: true}
		memo.New(m).Generate(ctx, "deck text")
		gt.S(t, m.prompts[0].User).Contains("**Sources**")
	})

	t.Run("custom instructions", func(t *testing.T) {
		m := &mockModel{output: "memo", search: true}
		memo.New(m,
			memo.WithInstruction("Write a memo."),
			memo.WithCitationInstruction("Cite sources."),
		).Generate(ctx, "deck text")
		gt.Value(t, m.prompts[0].System).Equal("Write a memo.")
		gt.S(t, m.prompts[0].User).Contains("Cite sources.")
	})

	t.Run("model error becomes failure with provider detail", func(t *testing.T) {
		m := &mockModel{err: goerr.Wrap(model.ErrUpstream, "failed",
			goerr.V(model.StatusKey, 403),
			goerr.V(model.DetailKey, "permission denied"))}
		result := memo.New(m).Generate(ctx, "deck text")

		gt.Value(t, result.Memo).Equal(memo.FailureMemo)
		gt.Value(t, result.Failure).NotNil()
		gt.Value(t, result.Failure.Status).Equal(403)
		gt.Value(t, result.Failure.Details).Equal("permission denied")
	})

	t.Run("plain error defaults to 500", func(t *testing.T) {
		m := &mockModel{err: errors.New("boom")}
		result := memo.New(m).Generate(ctx, "deck text")
		gt.Value(t, result.Failure.Status).Equal(http.StatusInternalServerError)
		gt.Value(t, result.Failure.Message).Equal("boom")
	})

	t.Run("empty output is a failure", func(t *testing.T) {
		m := &mockModel{output: "  \n"}
		result := memo.New(m).Generate(ctx, "deck text")
		gt.Value(t, result.Memo).Equal(memo.FailureMemo)
		gt.Value(t, result.Failure).NotNil()
	})
}

type mockContentGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	calledModel  string
	calledConfig *genai.GenerateContentConfig
	calledText   string
}

func (m *mockContentGenerator) GenerateContent(ctx context.Context, modelName string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calledModel = modelName
	m.calledConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.calledText = contents[0].Parts[0].Text
	}
	return m.resp, m.err
}

func TestSearchGrounded(t *testing.T) {
	ctx := context.Background()
	prompt := memo.Prompt{System: "system", User: "user"}

	t.Run("enables google search", func(t *testing.T) {
		gen := &mockContentGenerator{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "memo [1]"}}},
				GroundingMetadata: &genai.GroundingMetadata{
					WebSearchQueries: []string{"acme market size"},
				},
			}},
		}}
		m := memo.NewSearchGrounded(gen, "")

		out, err := m.Generate(ctx, prompt)
		gt.NoError(t, err).Required()
		gt.Value(t, out).Equal("memo [1]")
		gt.Value(t, gen.calledModel).Equal(memo.DefaultGeminiModel)
		gt.Value(t, gen.calledText).Equal("user")
		gt.Array(t, gen.calledConfig.Tools).Length(1).Required()
		gt.Value(t, gen.calledConfig.Tools[0].GoogleSearch).NotNil()
		gt.Value(t, gen.calledConfig.SystemInstruction.Parts[0].Text).Equal("system")
		gt.True(t, m.UsesSearch())
	})

	t.Run("api error", func(t *testing.T) {
		gen := &mockContentGenerator{err: genai.APIError{Code: 400, Message: "tool is not supported"}}
		_, err := memo.NewSearchGrounded(gen, "gemini-x").Generate(ctx, prompt)
		gt.Error(t, err).Is(model.ErrUpstream)
		gt.Value(t, goerr.Unwrap(err).Values()[model.StatusKey]).Equal(400)
	})

	t.Run("no candidates", func(t *testing.T) {
		gen := &mockContentGenerator{resp: &genai.GenerateContentResponse{}}
		_, err := memo.NewSearchGrounded(gen, "").Generate(ctx, prompt)
		gt.Error(t, err).Is(model.ErrUpstream)
	})
}

func TestGroq(t *testing.T) {
	ctx := context.Background()
	prompt := memo.Prompt{System: "system prompt", User: "deck text"}

	t.Run("chat completion", func(t *testing.T) {
		var received map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/chat/completions")
			gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-key")
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"qwen-qwq-32b","choices":[{"index":0,"message":{"role":"assistant","content":"**Risks** many"},"finish_reason":"stop"}]}`))
		}))
		defer srv.Close()

		m, err := memo.NewGroq("test-key", "", memo.WithGroqBaseURL(srv.URL))
		gt.NoError(t, err).Required()
		gt.Value(t, m.Name()).Equal(memo.DefaultGroqModel)

		out, err := m.Generate(ctx, prompt)
		gt.NoError(t, err).Required()
		gt.Value(t, out).Equal("**Risks** many")

		gt.Value(t, received["model"]).Equal("qwen-qwq-32b")
		gt.Value(t, received["temperature"]).Equal(0.5)
		gt.Value(t, received["top_p"]).Equal(0.95)

		messages, ok := received["messages"].([]any)
		gt.True(t, ok)
		gt.Array(t, messages).Length(2).Required()
		gt.Value(t, messages[0].(map[string]any)["role"]).Equal("system")
		gt.Value(t, messages[0].(map[string]any)["content"]).Equal("system prompt")
		gt.Value(t, messages[1].(map[string]any)["content"]).Equal("Generate an investment memo:\ndeck text")
	})

	t.Run("api error carries status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`))
		}))
		defer srv.Close()

		m, err := memo.NewGroq("bad-key", "", memo.WithGroqBaseURL(srv.URL))
		gt.NoError(t, err).Required()

		_, err = m.Generate(ctx, prompt)
		gt.Error(t, err).Is(model.ErrUpstream)

		values := goerr.Unwrap(err).Values()
		gt.Value(t, values[model.StatusKey]).Equal(http.StatusUnauthorized)
		gt.Value(t, values[model.DetailKey]).Equal("Invalid API Key")
	})

	t.Run("api key is required", func(t *testing.T) {
		_, err := memo.NewGroq("", "")
		gt.Error(t, err)
	})
}

func TestLLM_WithRealGemini(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set")
	}
	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		t.Skip("TEST_GEMINI_LOCATION not set")
	}

	ctx := context.Background()
	m, err := memo.NewGemini(ctx, projectID, location, "")
	gt.NoError(t, err).Required()

	result := memo.New(m).Generate(ctx, "Acme Rockets builds reusable launch vehicles. Revenue $2M ARR, growing 300% YoY.")
	gt.Value(t, result.Failure).Nil()
	gt.S(t, result.Memo).Contains("Risks")
}
