package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/errutil"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "invalid input", err: goerr.Wrap(model.ErrInvalidInput, "no file"), expected: http.StatusBadRequest},
		{name: "not found", err: goerr.Wrap(model.ErrNotFound, "missing"), expected: http.StatusNotFound},
		{name: "upstream", err: goerr.Wrap(model.ErrUpstream, "gemini"), expected: http.StatusInternalServerError},
		{name: "conflict is a generic failure", err: goerr.Wrap(model.ErrConflict, "dup"), expected: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), expected: http.StatusInternalServerError},
		{
			name:     "wrapped twice",
			err:      goerr.Wrap(goerr.Wrap(model.ErrNotFound, "inner"), "outer"),
			expected: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, errutil.StatusCode(tt.err)).Equal(tt.expected)
		})
	}
}

func TestHandleHTTP(t *testing.T) {
	t.Run("writes provider details", func(t *testing.T) {
		err := goerr.Wrap(model.ErrUpstream, "failed to generate memo",
			goerr.V(model.StatusKey, 403),
			goerr.V(model.DetailKey, "permission denied"),
			goerr.V("upload_id", "abc"))

		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, err)

		gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

		var body map[string]any
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.S(t, body["error"].(string)).Contains("failed to generate memo")

		details, ok := body["details"].(map[string]any)
		gt.True(t, ok)
		gt.Value(t, details["status"]).Equal(float64(403))
		gt.Value(t, details["detail"]).Equal("permission denied")
		_, hasUploadID := details["upload_id"]
		gt.Bool(t, hasUploadID).False()
	})

	t.Run("omits empty details", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, goerr.Wrap(model.ErrInvalidInput, "query is required"))

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		var body map[string]any
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		_, hasDetails := body["details"]
		gt.Bool(t, hasDetails).False()
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, nil)
		gt.Value(t, w.Body.Len()).Equal(0)
	})
}
