package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/usecase"
	"github.com/secmon-lab/deckmemo/pkg/utils/errutil"
	"github.com/secmon-lab/deckmemo/pkg/utils/safe"
)

const (
	uploadFormField = "file"
	maxJSONBodySize = 8 << 20
)

func uploadIDParam(r *http.Request) model.UploadID {
	return model.UploadID(chi.URLParam(r, "uploadId"))
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "no file uploaded"))
		case errors.As(err, &maxErr):
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "uploaded file is too large",
				goerr.V("limit", maxErr.Limit)))
		default:
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "invalid multipart request",
				goerr.V(model.DetailKey, err.Error())))
		}
		return
	}
	defer safe.Close(ctx, file)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	content, err := s.content.Upload(ctx, usecase.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	writeJSON(ctx, w, uploadResponse{
		ContentID:     string(content.ID),
		UploadID:      content.UploadID.String(),
		ExtractedText: content.OriginalContent,
	})
}

func (s *Server) listContentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "limit must be an integer", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	contents, err := s.content.ListContents(ctx, limit)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := contentListResponse{Contents: make([]contentResponse, len(contents))}
	for i, c := range contents {
		resp.Contents[i] = toContentResponse(c)
	}
	writeJSON(ctx, w, resp)
}

func (s *Server) getContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	content, err := s.content.GetContent(ctx, uploadIDParam(r))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, toContentResponse(content))
}

func (s *Server) updateContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		EditedContent json.RawMessage `json:"editedContent"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize)).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "invalid request body",
			goerr.V(model.DetailKey, err.Error())))
		return
	}

	edited, err := decodeString(req.EditedContent)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "editedContent must be a string"))
		return
	}

	content, err := s.content.UpdateContent(ctx, uploadIDParam(r), edited)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, toContentResponse(content))
}

func (s *Server) fileURLHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	signed, err := s.content.SignedFileURL(ctx, uploadIDParam(r))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, fileURLResponse{URL: signed.URL, ExpiresAt: signed.ExpiresAt})
}

func (s *Server) generateMemoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	content, err := s.content.GenerateMemo(ctx, uploadIDParam(r))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, memoResponse{Memo: content.Memo})
}

func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Query json.RawMessage `json:"query"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize)).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "invalid request body",
			goerr.V(model.DetailKey, err.Error())))
		return
	}

	query, err := decodeString(req.Query)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "query must be a string"))
		return
	}

	items, err := s.content.ValidateSnippet(ctx, query)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := validateResponse{Results: make([]searchResultResponse, len(items))}
	for i, item := range items {
		resp.Results[i] = searchResultResponse{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		}
	}
	writeJSON(ctx, w, resp)
}

// decodeString accepts only a JSON string. Missing, null and non-string values are rejected.
func decodeString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", goerr.New("value is not a string")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", goerr.Wrap(err, "failed to decode string")
	}
	return s, nil
}
