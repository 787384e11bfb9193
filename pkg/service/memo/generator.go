package memo

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
)

// FailureMemo is the memo text reported alongside a failed generation
const FailureMemo = "Error generating memo."

// Model is one memo backend. It returns the raw model output.
type Model interface {
	Name() string
	UsesSearch() bool
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Generator builds the prompt, calls the model once and reports the outcome as a MemoResult
type Generator struct {
	model   Model
	prompts PromptBuilder
}

var _ interfaces.MemoGenerator = &Generator{}

type Option func(*Generator)

// WithInstruction replaces the system instruction
func WithInstruction(instruction string) Option {
	return func(g *Generator) {
		if instruction != "" {
			g.prompts.Instruction = instruction
		}
	}
}

// WithCitationInstruction replaces the citation instruction of search-grounded models
func WithCitationInstruction(instruction string) Option {
	return func(g *Generator) {
		if instruction != "" {
			g.prompts.CitationInstruction = instruction
		}
	}
}

func New(m Model, opts ...Option) *Generator {
	g := &Generator{
		model:   m,
		prompts: NewPromptBuilder(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails with an error. A failed call or an empty output yields a result with Failure set.
func (g *Generator) Generate(ctx context.Context, source string) *interfaces.MemoResult {
	logger := logging.From(ctx).With("memo_model", g.model.Name())
	prompt := g.prompts.Build(source, g.model.UsesSearch())

	output, err := g.model.Generate(ctx, prompt)
	if err != nil {
		logger.Error("memo generation failed", "error", err)
		return &interfaces.MemoResult{
			Memo:    FailureMemo,
			Model:   g.model.Name(),
			Failure: toFailure(err),
		}
	}

	if strings.TrimSpace(output) == "" {
		logger.Warn("memo generation returned empty output")
		return &interfaces.MemoResult{
			Memo:  FailureMemo,
			Model: g.model.Name(),
			Failure: &interfaces.MemoFailure{
				Status:  http.StatusBadGateway,
				Message: "model returned empty output",
			},
		}
	}

	logger.Info("memo generated", "length", len(output))
	return &interfaces.MemoResult{
		Memo:  output,
		Model: g.model.Name(),
	}
}

func toFailure(err error) *interfaces.MemoFailure {
	failure := &interfaces.MemoFailure{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}

	if ge := goerr.Unwrap(err); ge != nil {
		values := ge.Values()
		if status, ok := values[model.StatusKey].(int); ok && status > 0 {
			failure.Status = status
		}
		if detail, ok := values[model.DetailKey]; ok {
			failure.Details = detail
		}
	}

	return failure
}
