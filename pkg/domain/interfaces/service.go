package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

// ObjectStore stores uploaded files and issues short-lived read URLs
type ObjectStore interface {
	// Put uploads the bytes read from r and returns an addressable reference
	Put(ctx context.Context, objectName, contentType string, r io.Reader) (model.StorageRef, error)

	// SignedURL issues a read-only URL for objectName and its expiry
	SignedURL(ctx context.Context, objectName string) (string, time.Time, error)
}

// Extraction is the typed result of a document understanding call
type Extraction struct {
	// Text is the generated text. Empty when the model produced a candidate without text.
	Text         string
	ModelVersion string
	FinishReason string
}

// Extractor converts a stored document into text
type Extractor interface {
	Extract(ctx context.Context, ref model.StorageRef) (*Extraction, error)
}

// MemoFailure describes a failed generation without aborting the caller
type MemoFailure struct {
	Status  int
	Message string
	Details any
}

// MemoResult is the outcome of one memo generation attempt. Failure is nil on success.
type MemoResult struct {
	Memo    string
	Model   string
	Failure *MemoFailure
}

// MemoGenerator writes an investment memo from source text. It reports failures through
// MemoResult.Failure instead of an error so the caller decides whether to persist.
type MemoGenerator interface {
	Generate(ctx context.Context, source string) *MemoResult
}

// Searcher queries a web search API
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.SearchItem, error)
}
