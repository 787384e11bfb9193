package types

import "fmt"

// MemoBackend selects the model that writes investment memos
type MemoBackend string

const (
	// MemoBackendGeminiSearch is Gemini on Vertex AI with the Google Search grounding tool
	MemoBackendGeminiSearch MemoBackend = "gemini-search"
	// MemoBackendGemini is Gemini without search grounding
	MemoBackendGemini MemoBackend = "gemini"
	// MemoBackendGroq is an OpenAI compatible chat completion on Groq
	MemoBackendGroq MemoBackend = "groq"
)

// AllMemoBackends returns all valid memo backends
func AllMemoBackends() []MemoBackend {
	return []MemoBackend{
		MemoBackendGeminiSearch,
		MemoBackendGemini,
		MemoBackendGroq,
	}
}

// IsValid checks if the memo backend is valid
func (b MemoBackend) IsValid() bool {
	switch b {
	case MemoBackendGeminiSearch,
		MemoBackendGemini,
		MemoBackendGroq:
		return true
	default:
		return false
	}
}

func (b MemoBackend) String() string {
	return string(b)
}

// ParseMemoBackend parses a string into a MemoBackend
func ParseMemoBackend(s string) (MemoBackend, error) {
	backend := MemoBackend(s)
	if !backend.IsValid() {
		return "", fmt.Errorf("invalid memo backend: %s", s)
	}
	return backend, nil
}
