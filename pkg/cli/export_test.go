package cli

var (
	PrintSearchResults = printSearchResults
	GetIndexConfig     = getIndexConfig
)
