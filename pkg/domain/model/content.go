package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/deckmemo/pkg/domain/types"
)

// AnonymousOwnerID is assigned to every record until authentication exists
const AnonymousOwnerID = "anonymous"

// NoTextExtracted replaces the original content when the extraction model returns no text
const NoTextExtracted = "No text extracted."

// ContentID is a UUID-based identifier for Content
type ContentID string

// NewContentID generates a new UUID v4 ContentID
func NewContentID() ContentID {
	return ContentID(uuid.New().String())
}

// UploadID identifies one upload. It is generated server side; the filename is metadata only.
type UploadID string

// NewUploadID generates a new UUID v4 UploadID
func NewUploadID() UploadID {
	return UploadID(uuid.New().String())
}

func (x UploadID) String() string {
	return string(x)
}

// StorageRef is an addressable reference to a stored object, e.g. gs://bucket/object
type StorageRef string

func (x StorageRef) String() string {
	return string(x)
}

// Content is the persisted lifecycle of one uploaded pitch deck
type Content struct {
	ID              ContentID
	OwnerID         string
	UploadID        UploadID
	FileName        string
	StorageRef      StorageRef
	ObjectName      string
	PageCount       int
	OriginalContent string
	EditedContent   string
	Memo            string
	MemoModel       string
	State           types.ContentState
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SourceText returns the text memo generation must use: the edited content when the user
// provided one, otherwise the extracted original.
func (x *Content) SourceText() string {
	if strings.TrimSpace(x.EditedContent) != "" {
		return x.EditedContent
	}
	return x.OriginalContent
}

// ContentUpdate is a partial update. Nil fields are left untouched.
type ContentUpdate struct {
	EditedContent *string
	Memo          *string
	MemoModel     *string
	State         *types.ContentState
}

// IsEmpty reports whether the update changes nothing
func (x ContentUpdate) IsEmpty() bool {
	return x.EditedContent == nil && x.Memo == nil && x.MemoModel == nil && x.State == nil
}

// Apply copies the set fields of the update onto c
func (x ContentUpdate) Apply(c *Content) {
	if x.EditedContent != nil {
		c.EditedContent = *x.EditedContent
	}
	if x.Memo != nil {
		c.Memo = *x.Memo
	}
	if x.MemoModel != nil {
		c.MemoModel = *x.MemoModel
	}
	if x.State != nil {
		c.State = *x.State
	}
}

// EditUpdate builds the update applied when the user saves edited text
func EditUpdate(edited string) ContentUpdate {
	state := types.ContentStateEdited
	return ContentUpdate{EditedContent: &edited, State: &state}
}

// MemoUpdate builds the update applied after a successful memo generation
func MemoUpdate(memo, modelName string) ContentUpdate {
	state := types.ContentStateMemoGenerated
	return ContentUpdate{Memo: &memo, MemoModel: &modelName, State: &state}
}
