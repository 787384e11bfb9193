package usecase

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotConfigured is returned when an operation needs a client that was not set up
var ErrNotConfigured = goerr.New("service is not configured")

// Context keys for error values
const (
	UploadIDKey = "upload_id"
	OwnerIDKey  = "owner_id"
)

func notConfigured(name string) error {
	return goerr.Wrap(ErrNotConfigured, "client is not configured", goerr.V("client", name))
}
