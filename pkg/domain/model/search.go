package model

// Defaults used when a search result omits a field
const (
	NoTitle   = "No Title"
	NoSnippet = "No Snippet"
	NoLink    = "#"
)

// SearchItem is one web search result used to fact-check a memo snippet
type SearchItem struct {
	Title   string
	Snippet string
	Link    string
}

// Normalize fills missing fields with display defaults
func (x SearchItem) Normalize() SearchItem {
	if x.Title == "" {
		x.Title = NoTitle
	}
	if x.Snippet == "" {
		x.Snippet = NoSnippet
	}
	if x.Link == "" {
		x.Link = NoLink
	}
	return x
}
