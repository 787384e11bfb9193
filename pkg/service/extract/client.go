package extract

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/service/gemini"
	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-2.0-flash-lite-001"
	DefaultInstruction = "Extract key details from this PDF file and provide a structured summary."
	pdfMIMEType        = "application/pdf"
)

// Client extracts text from a stored PDF by pointing Gemini at the object URI
type Client struct {
	models      gemini.ContentGenerator
	model       string
	instruction string
}

var _ interfaces.Extractor = &Client{}

type Option func(*Client)

func WithModel(name string) Option {
	return func(c *Client) {
		c.model = name
	}
}

// WithInstruction replaces the default extraction instruction
func WithInstruction(instruction string) Option {
	return func(c *Client) {
		if instruction != "" {
			c.instruction = instruction
		}
	}
}

// NewVertex creates an extraction client backed by Vertex AI
func NewVertex(ctx context.Context, projectID, location string, httpClient *http.Client, opts ...Option) (*Client, error) {
	client, err := gemini.NewVertexClient(ctx, projectID, location, httpClient)
	if err != nil {
		return nil, err
	}
	return New(client.Models, opts...), nil
}

// New creates an extraction client over an existing content generator
func New(models gemini.ContentGenerator, opts ...Option) *Client {
	c := &Client{
		models:      models,
		model:       DefaultModel,
		instruction: DefaultInstruction,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract sends the instruction and the file reference as one user turn.
// An empty Text means the model answered without text; the caller picks the placeholder.
func (c *Client) Extract(ctx context.Context, ref model.StorageRef) (*interfaces.Extraction, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(c.instruction),
			genai.NewPartFromURI(ref.String(), pdfMIMEType),
		}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, gemini.WrapAPIError(err, "failed to extract text",
			goerr.V("model", c.model),
			goerr.V("ref", ref.String()))
	}

	candidate, err := gemini.FirstCandidate(resp, goerr.V("model", c.model), goerr.V("ref", ref.String()))
	if err != nil {
		return nil, err
	}

	return &interfaces.Extraction{
		Text:         gemini.CandidateText(candidate),
		ModelVersion: resp.ModelVersion,
		FinishReason: string(candidate.FinishReason),
	}, nil
}
