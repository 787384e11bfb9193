package types

// ContentState is the lifecycle position of a content record.
// Created -> Edited, and either may move to MemoGenerated; a later edit moves back to Edited.
type ContentState string

const (
	ContentStateCreated       ContentState = "CREATED"
	ContentStateEdited        ContentState = "EDITED"
	ContentStateMemoGenerated ContentState = "MEMO_GENERATED"
)

func (s ContentState) String() string {
	return string(s)
}
