package config

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/service/extract"
	"github.com/secmon-lab/deckmemo/pkg/service/gemini"
	"github.com/secmon-lab/deckmemo/pkg/service/memo"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Gemini holds configuration for the Vertex AI Gemini clients
type Gemini struct {
	projectID    string
	location     string
	extractModel string
	memoModel    string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("DECKMEMO_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("DECKMEMO_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-extract-model",
			Usage:       "Gemini model used to extract text from uploaded PDFs",
			Value:       extract.DefaultModel,
			Sources:     cli.EnvVars("DECKMEMO_GEMINI_EXTRACT_MODEL"),
			Destination: &g.extractModel,
		},
		&cli.StringFlag{
			Name:        "gemini-memo-model",
			Usage:       "Gemini model used to generate memos",
			Value:       memo.DefaultGeminiModel,
			Sources:     cli.EnvVars("DECKMEMO_GEMINI_MEMO_MODEL"),
			Destination: &g.memoModel,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.String("extract_model", g.extractModel),
		slog.String("memo_model", g.memoModel),
	}
}

func (g *Gemini) ProjectID() string { return g.projectID }
func (g *Gemini) Location() string  { return g.location }
func (g *Gemini) MemoModel() string { return g.memoModel }

// Configure creates a Vertex AI genai client authorized by httpClient
func (g *Gemini) Configure(ctx context.Context, httpClient *http.Client) (*genai.Client, error) {
	if g.projectID == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "gemini-project is required")
	}
	return gemini.NewVertexClient(ctx, g.projectID, g.location, httpClient)
}

// NewExtractor creates the extraction client over an existing genai client
func (g *Gemini) NewExtractor(client *genai.Client, prompts *PromptConfig) *extract.Client {
	return extract.New(client.Models,
		extract.WithModel(g.extractModel),
		extract.WithInstruction(prompts.Extraction.Instruction),
	)
}
