package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
	"github.com/secmon-lab/deckmemo/pkg/utils/safe"
)

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusCode maps the error taxonomy to an HTTP status
func StatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Details returns the provider status and detail carried as goerr values
func Details(err error) map[string]any {
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return nil
	}

	values := ge.Values()
	details := map[string]any{}
	for _, key := range []string{model.StatusKey, model.DetailKey} {
		if v, ok := values[key]; ok {
			details[key] = v
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// HandleHTTP logs the error, reports server errors to Sentry and writes the JSON error body.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	statusCode := StatusCode(err)
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		report(ctx, err)
	}

	body, marshalErr := json.Marshal(ErrorResponse{
		Error:   err.Error(),
		Details: Details(err),
	})
	if marshalErr != nil {
		logger.Error("failed to marshal error response", "error", marshalErr)
		body = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, body)
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	if ge := goerr.Unwrap(err); ge != nil {
		hub.Scope().SetContext("goerr", sentry.Context(ge.Values()))
	}
	hub.CaptureException(err)
}
