package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/errutil"
	"github.com/secmon-lab/deckmemo/pkg/utils/safe"
)

type contentResponse struct {
	ContentID       string    `json:"contentId"`
	OwnerID         string    `json:"ownerId"`
	UploadID        string    `json:"uploadId"`
	FileName        string    `json:"fileName"`
	StorageRef      string    `json:"storageRef"`
	PageCount       int       `json:"pageCount"`
	OriginalContent string    `json:"originalContent"`
	EditedContent   string    `json:"editedContent"`
	Memo            string    `json:"memo"`
	MemoModel       string    `json:"memoModel"`
	State           string    `json:"state"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toContentResponse(c *model.Content) contentResponse {
	return contentResponse{
		ContentID:       string(c.ID),
		OwnerID:         c.OwnerID,
		UploadID:        c.UploadID.String(),
		FileName:        c.FileName,
		StorageRef:      c.StorageRef.String(),
		PageCount:       c.PageCount,
		OriginalContent: c.OriginalContent,
		EditedContent:   c.EditedContent,
		Memo:            c.Memo,
		MemoModel:       c.MemoModel,
		State:           c.State.String(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type uploadResponse struct {
	ContentID     string `json:"contentId"`
	UploadID      string `json:"uploadId"`
	ExtractedText string `json:"extractedText"`
}

type contentListResponse struct {
	Contents []contentResponse `json:"contents"`
}

type fileURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type memoResponse struct {
	Memo string `json:"memo"`
}

type searchResultResponse struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type validateResponse struct {
	Results []searchResultResponse `json:"results"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, data)
}
