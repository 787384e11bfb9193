// Package gemini holds the genai plumbing shared by the extraction and memo clients.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of the genai models API the clients call
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewVertexClient creates a Vertex AI backed genai client. When httpClient is non-nil it carries
// the caller's credentials.
func NewVertexClient(ctx context.Context, projectID, location string, httpClient *http.Client) (*genai.Client, error) {
	if projectID == "" {
		return nil, goerr.New("gemini project ID is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:    projectID,
		Location:   location,
		Backend:    genai.BackendVertexAI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client",
			goerr.V("project_id", projectID),
			goerr.V("location", location))
	}

	return client, nil
}

// FirstCandidate returns the first candidate or an ErrUpstream carrying the block reason
func FirstCandidate(resp *genai.GenerateContentResponse, opts ...goerr.Option) (*genai.Candidate, error) {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		return resp.Candidates[0], nil
	}

	if resp != nil && resp.PromptFeedback != nil {
		opts = append(opts,
			goerr.V(model.DetailKey, string(resp.PromptFeedback.BlockReason)),
			goerr.V("block_message", resp.PromptFeedback.BlockReasonMessage))
	}
	return nil, goerr.Wrap(model.ErrUpstream, "model returned no candidates", opts...)
}

// CandidateText joins the non-thought text parts of a candidate
func CandidateText(candidate *genai.Candidate) string {
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// WrapAPIError wraps err as ErrUpstream with the provider status and message when available
func WrapAPIError(err error, msg string, opts ...goerr.Option) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		opts = append(opts,
			goerr.V(model.StatusKey, apiErr.Code),
			goerr.V(model.DetailKey, apiErr.Message))
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		opts = append(opts,
			goerr.V(model.StatusKey, apiErrPtr.Code),
			goerr.V(model.DetailKey, apiErrPtr.Message))
	default:
		opts = append(opts, goerr.V(model.DetailKey, err.Error()))
	}
	return goerr.Wrap(model.ErrUpstream, msg, opts...)
}
