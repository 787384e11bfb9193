package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/types"
	"github.com/secmon-lab/deckmemo/pkg/service/memo"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Memo holds CLI flags that select the memo backend
type Memo struct {
	backend    string
	groqAPIKey string
	groqModel  string
}

// Flags returns CLI flags for memo generation
func (m *Memo) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "memo-backend",
			Usage:       "Memo backend (gemini-search, gemini, groq)",
			Value:       types.MemoBackendGeminiSearch.String(),
			Sources:     cli.EnvVars("DECKMEMO_MEMO_BACKEND"),
			Destination: &m.backend,
		},
		&cli.StringFlag{
			Name:        "groq-api-key",
			Usage:       "Groq API key (required for the groq backend)",
			Sources:     cli.EnvVars("DECKMEMO_GROQ_API_KEY"),
			Destination: &m.groqAPIKey,
		},
		&cli.StringFlag{
			Name:        "groq-model",
			Usage:       "Groq chat model",
			Value:       memo.DefaultGroqModel,
			Sources:     cli.EnvVars("DECKMEMO_GROQ_MODEL"),
			Destination: &m.groqModel,
		},
	}
}

func (m *Memo) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String(BackendKey, m.backend),
		slog.String("groq_model", m.groqModel),
	}
}

// Backend returns the parsed backend
func (m *Memo) Backend() (types.MemoBackend, error) {
	backend, err := types.ParseMemoBackend(m.backend)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidConfig, "invalid memo backend", goerr.V(BackendKey, m.backend))
	}
	return backend, nil
}

// Configure creates the memo generator. genaiClient is used by the gemini-search backend and may be
// nil for the others.
func (m *Memo) Configure(ctx context.Context, g *Gemini, genaiClient *genai.Client, prompts *PromptConfig) (*memo.Generator, error) {
	backend, err := m.Backend()
	if err != nil {
		return nil, err
	}

	var model memo.Model
	switch backend {
	case types.MemoBackendGeminiSearch:
		if genaiClient == nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "gemini client is required for the gemini-search backend")
		}
		model = memo.NewSearchGrounded(genaiClient.Models, g.MemoModel())

	case types.MemoBackendGemini:
		llm, err := memo.NewGemini(ctx, g.ProjectID(), g.Location(), g.MemoModel())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure gemini memo backend")
		}
		model = llm

	case types.MemoBackendGroq:
		groq, err := memo.NewGroq(m.groqAPIKey, m.groqModel)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure groq memo backend")
		}
		model = groq
	}

	return memo.New(model,
		memo.WithInstruction(prompts.Memo.Instruction),
		memo.WithCitationInstruction(prompts.Memo.CitationInstruction),
	), nil
}
