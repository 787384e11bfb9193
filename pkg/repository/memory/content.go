package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

type contentRepository struct {
	mu       sync.RWMutex
	contents map[model.UploadID]*model.Content
	now      func() time.Time
}

func newContentRepository(now func() time.Time) *contentRepository {
	return &contentRepository{
		contents: make(map[model.UploadID]*model.Content),
		now:      now,
	}
}

// copyContent creates a copy so callers never share the stored pointer
func copyContent(c *model.Content) *model.Content {
	copied := *c
	return &copied
}

func (r *contentRepository) Create(ctx context.Context, c *model.Content) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[c.UploadID]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "upload ID already exists", goerr.V("upload_id", c.UploadID))
	}

	now := r.now().UTC()
	created := copyContent(c)
	if created.ID == "" {
		created.ID = model.NewContentID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.contents[created.UploadID] = created
	return copyContent(created), nil
}

func (r *contentRepository) FindByUploadID(ctx context.Context, uploadID model.UploadID) (*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.contents[uploadID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "content not found", goerr.V("upload_id", uploadID))
	}

	return copyContent(c), nil
}

func (r *contentRepository) UpdateFields(ctx context.Context, uploadID model.UploadID, update model.ContentUpdate) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.contents[uploadID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "content not found", goerr.V("upload_id", uploadID))
	}

	if update.IsEmpty() {
		return copyContent(c), nil
	}

	update.Apply(c)
	c.UpdatedAt = r.now().UTC()

	return copyContent(c), nil
}

func (r *contentRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Content
	for _, c := range r.contents {
		if c.OwnerID == ownerID {
			result = append(result, copyContent(c))
		}
	}

	// Same order as the Firestore query: CreatedAt desc, UploadID asc
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].UploadID < result[j].UploadID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
