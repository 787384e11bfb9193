package storage

import (
	"context"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"google.golang.org/api/option"
)

// GCS stores uploads in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
}

var _ interfaces.ObjectStore = &GCS{}

// NewGCS creates a Cloud Storage backed object store
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("storage bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &GCS{
		client: client,
		bucket: bucket,
	}, nil
}

// Put streams r into the bucket and returns the gs:// URI of the object
func (g *GCS) Put(ctx context.Context, objectName, contentType string, r io.Reader) (model.StorageRef, error) {
	// Cancelling the writer context aborts the upload; Close alone would commit partial data
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", goerr.Wrap(model.ErrUpstream, "failed to write object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", objectName),
			goerr.V(model.DetailKey, err.Error()))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(model.ErrUpstream, "failed to finalize object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", objectName),
			goerr.V(model.DetailKey, err.Error()))
	}

	return model.StorageRef("gs://" + g.bucket + "/" + objectName), nil
}

// SignedURL issues a V4 signed GET URL valid for SignedURLTTL
func (g *GCS) SignedURL(ctx context.Context, objectName string) (string, time.Time, error) {
	expires := time.Now().Add(SignedURLTTL)
	url, err := g.client.Bucket(g.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return "", time.Time{}, goerr.Wrap(model.ErrUpstream, "failed to sign URL",
			goerr.V("bucket", g.bucket),
			goerr.V("object", objectName),
			goerr.V(model.DetailKey, err.Error()))
	}

	return url, expires, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
