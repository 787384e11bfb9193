package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/domain/types"
	"github.com/secmon-lab/deckmemo/pkg/service/storage"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	defaultContentType = "application/pdf"
)

// UploadInput is one uploaded file. Data must stay readable for the duration of Upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.ReaderAt
}

// SignedFile is a short-lived read URL of a stored upload
type SignedFile struct {
	URL       string
	ExpiresAt time.Time
}

// ContentUseCase sequences storage, extraction, persistence, memo generation and validation
type ContentUseCase struct {
	repo      interfaces.Repository
	store     interfaces.ObjectStore
	extractor interfaces.Extractor
	memo      interfaces.MemoGenerator
	searcher  interfaces.Searcher
}

func NewContentUseCase(repo interfaces.Repository, store interfaces.ObjectStore, extractor interfaces.Extractor, memo interfaces.MemoGenerator, searcher interfaces.Searcher) *ContentUseCase {
	return &ContentUseCase{
		repo:      repo,
		store:     store,
		extractor: extractor,
		memo:      memo,
		searcher:  searcher,
	}
}

// Upload stores the file, extracts its text and creates the content record
func (uc *ContentUseCase) Upload(ctx context.Context, input UploadInput) (*model.Content, error) {
	if input.Data == nil || input.Size <= 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "no file uploaded",
			goerr.V("file_name", input.FileName),
			goerr.V("size", input.Size))
	}
	if uc.store == nil {
		return nil, notConfigured("object store")
	}
	if uc.extractor == nil {
		return nil, notConfigured("extractor")
	}

	uploadID := model.NewUploadID()
	objectName := storage.ObjectName(uploadID, input.FileName)
	logger := logging.From(ctx).With(UploadIDKey, uploadID.String())

	pageCount, err := countPages(input.Data, input.Size)
	if err != nil {
		logger.Warn("failed to count PDF pages", "error", err)
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	ref, err := uc.store.Put(ctx, objectName, contentType, io.NewSectionReader(input.Data, 0, input.Size))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store uploaded file",
			goerr.V(UploadIDKey, uploadID),
			goerr.V("object", objectName))
	}
	logger.Info("uploaded file stored", "ref", ref.String(), "size", input.Size, "pages", pageCount)

	extraction, err := uc.extractor.Extract(ctx, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract text",
			goerr.V(UploadIDKey, uploadID),
			goerr.V("ref", ref.String()))
	}

	text := extraction.Text
	if strings.TrimSpace(text) == "" {
		logger.Warn("extraction returned no text", "finish_reason", extraction.FinishReason)
		text = model.NoTextExtracted
	}

	// Persist even when the caller has gone away
	created, err := uc.repo.Content().Create(context.WithoutCancel(ctx), &model.Content{
		ID:              model.NewContentID(),
		OwnerID:         model.AnonymousOwnerID,
		UploadID:        uploadID,
		FileName:        input.FileName,
		StorageRef:      ref,
		ObjectName:      objectName,
		PageCount:       pageCount,
		OriginalContent: text,
		State:           types.ContentStateCreated,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create content", goerr.V(UploadIDKey, uploadID))
	}

	logger.Info("content created",
		"content_id", created.ID,
		"model_version", extraction.ModelVersion,
		"text_length", len(text))

	return created, nil
}

// GetContent returns the record of uploadID
func (uc *ContentUseCase) GetContent(ctx context.Context, uploadID model.UploadID) (*model.Content, error) {
	if uploadID == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "upload ID is required")
	}

	content, err := uc.repo.Content().FindByUploadID(ctx, uploadID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get content", goerr.V(UploadIDKey, uploadID))
	}
	return content, nil
}

// ListContents returns the records of the current owner, newest first. Zero limit means the default.
func (uc *ContentUseCase) ListContents(ctx context.Context, limit int) ([]*model.Content, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, goerr.Wrap(model.ErrInvalidInput, "limit is out of range",
			goerr.V("limit", limit),
			goerr.V("max", MaxListLimit))
	}

	contents, err := uc.repo.Content().ListByOwner(ctx, model.AnonymousOwnerID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contents", goerr.V(OwnerIDKey, model.AnonymousOwnerID))
	}
	return contents, nil
}

// UpdateContent saves the user's edited text. Concurrent edits are last-write-wins.
func (uc *ContentUseCase) UpdateContent(ctx context.Context, uploadID model.UploadID, editedContent string) (*model.Content, error) {
	if uploadID == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "upload ID is required")
	}

	updated, err := uc.repo.Content().UpdateFields(ctx, uploadID, model.EditUpdate(editedContent))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update content", goerr.V(UploadIDKey, uploadID))
	}

	logging.From(ctx).Info("content edited",
		UploadIDKey, uploadID,
		"length", len(editedContent))

	return updated, nil
}

// GenerateMemo writes a memo from the edited text, or the original when no edit exists.
// A failed generation leaves the stored memo untouched.
func (uc *ContentUseCase) GenerateMemo(ctx context.Context, uploadID model.UploadID) (*model.Content, error) {
	content, err := uc.GetContent(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	source := content.SourceText()
	if strings.TrimSpace(source) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "content is empty", goerr.V(UploadIDKey, uploadID))
	}
	if uc.memo == nil {
		return nil, notConfigured("memo generator")
	}

	result := uc.memo.Generate(ctx, source)
	if result.Failure != nil {
		return nil, goerr.Wrap(model.ErrUpstream, "failed to generate memo",
			goerr.V(UploadIDKey, uploadID),
			goerr.V("memo_model", result.Model),
			goerr.V(model.StatusKey, result.Failure.Status),
			goerr.V(model.DetailKey, failureDetail(result.Failure)))
	}

	updated, err := uc.repo.Content().UpdateFields(context.WithoutCancel(ctx), uploadID, model.MemoUpdate(result.Memo, result.Model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save memo", goerr.V(UploadIDKey, uploadID))
	}

	return updated, nil
}

func failureDetail(f *interfaces.MemoFailure) any {
	if f.Details != nil {
		return f.Details
	}
	return f.Message
}

// ValidateSnippet searches the web for a memo snippet and fills missing result fields
func (uc *ContentUseCase) ValidateSnippet(ctx context.Context, query string) ([]model.SearchItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "query is required")
	}
	if uc.searcher == nil {
		return nil, notConfigured("searcher")
	}

	items, err := uc.searcher.Search(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to validate snippet")
	}

	results := make([]model.SearchItem, len(items))
	for i, item := range items {
		results[i] = item.Normalize()
	}
	return results, nil
}

// SignedFileURL issues a short-lived read URL for the uploaded PDF
func (uc *ContentUseCase) SignedFileURL(ctx context.Context, uploadID model.UploadID) (*SignedFile, error) {
	content, err := uc.GetContent(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if content.ObjectName == "" {
		return nil, goerr.Wrap(model.ErrNotFound, "content has no stored file", goerr.V(UploadIDKey, uploadID))
	}
	if uc.store == nil {
		return nil, notConfigured("object store")
	}

	url, expiresAt, err := uc.store.SignedURL(ctx, content.ObjectName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign file URL", goerr.V(UploadIDKey, uploadID))
	}

	return &SignedFile{URL: url, ExpiresAt: expiresAt}, nil
}
