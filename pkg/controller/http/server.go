package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/usecase"
)

// DefaultMaxUploadSize bounds the multipart request body of POST /upload
const DefaultMaxUploadSize int64 = 32 << 20

const livenessMessage = "Backend is working!"

// ContentUseCase is the orchestrator behind the content endpoints
type ContentUseCase interface {
	Upload(ctx context.Context, input usecase.UploadInput) (*model.Content, error)
	GetContent(ctx context.Context, uploadID model.UploadID) (*model.Content, error)
	ListContents(ctx context.Context, limit int) ([]*model.Content, error)
	UpdateContent(ctx context.Context, uploadID model.UploadID, editedContent string) (*model.Content, error)
	GenerateMemo(ctx context.Context, uploadID model.UploadID) (*model.Content, error)
	ValidateSnippet(ctx context.Context, query string) ([]model.SearchItem, error)
	SignedFileURL(ctx context.Context, uploadID model.UploadID) (*usecase.SignedFile, error)
}

type Server struct {
	router        *chi.Mux
	content       ContentUseCase
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize overrides the upload body limit
func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

func New(content ContentUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		content:       content,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", livenessHandler)
	r.Post("/upload", s.uploadHandler)
	r.Route("/content", func(r chi.Router) {
		r.Get("/", s.listContentsHandler)
		r.Get("/{uploadId}", s.getContentHandler)
		r.Put("/{uploadId}", s.updateContentHandler)
		r.Get("/{uploadId}/file", s.fileURLHandler)
	})
	r.Post("/generate-memo/{uploadId}", s.generateMemoHandler)
	r.Post("/validate-memo-content", s.validateHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(livenessMessage))
}
