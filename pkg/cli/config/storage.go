package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/service/storage"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Storage holds CLI flags for the object store of uploaded files
type Storage struct {
	backend string
	bucket  string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Object store backend (gcs or memory)",
			Value:       "gcs",
			Sources:     cli.EnvVars("DECKMEMO_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for uploaded files",
			Sources:     cli.EnvVars("DECKMEMO_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
	}
}

func (s *Storage) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String(BackendKey, s.backend),
		slog.String("bucket", s.bucket),
	}
}

// Configure creates the object store. The returned function releases the client.
func (s *Storage) Configure(ctx context.Context, opts ...option.ClientOption) (interfaces.ObjectStore, func(), error) {
	switch s.backend {
	case "gcs":
		if s.bucket == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "storage-bucket is required when using gcs backend")
		}
		store, err := storage.NewGCS(ctx, s.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize storage")
		}
		logging.Default().Info("Using Cloud Storage", "bucket", s.bucket)
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close storage client", "error", err)
			}
		}, nil

	case "memory":
		bucket := s.bucket
		if bucket == "" {
			bucket = "local"
		}
		logging.Default().Info("Using in-memory storage (development mode)")
		return storage.NewMemory(bucket), func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid storage backend", goerr.V(BackendKey, s.backend))
	}
}
