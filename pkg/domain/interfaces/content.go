package interfaces

import (
	"context"

	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

// ContentRepository defines the interface for Content data access
type ContentRepository interface {
	// Create stores a new content record. UploadID must be unique; a duplicate returns
	// an error wrapping model.ErrConflict. CreatedAt and UpdatedAt are set by the repository.
	Create(ctx context.Context, c *model.Content) (*model.Content, error)

	// FindByUploadID retrieves a content record. Returns an error wrapping model.ErrNotFound
	// if no record exists.
	FindByUploadID(ctx context.Context, uploadID model.UploadID) (*model.Content, error)

	// UpdateFields applies a partial update atomically and refreshes UpdatedAt.
	// Returns the updated record, or an error wrapping model.ErrNotFound.
	UpdateFields(ctx context.Context, uploadID model.UploadID, update model.ContentUpdate) (*model.Content, error)

	// ListByOwner returns at most limit records of the owner, newest first
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*model.Content, error)
}
