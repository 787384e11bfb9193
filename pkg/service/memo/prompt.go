package memo

import "strings"

const (
	DefaultInstruction = "You are an expert investor tasked with generating a concise investment memo.\n" +
		"Structure the memo with the following sections: **Value Proposition**, **Market Opportunity**, **Financials**, and **Risks**.\n" +
		"Base your memo solely on the provided content, and avoid speculation beyond the text."

	DefaultCitationInstruction = "When citing data (such as market size, competitor analysis, or factual discrepancies), " +
		"you MUST use Google Search to verify the information and include appropriate citations in the format [1], [2], etc. " +
		"List the sources corresponding to these numbers at the end under a **Sources** section. " +
		"If you cannot verify a specific piece of data via search, state that clearly in the sources list."

	contentLead = "Base your memo solely on the following content:"
)

// Prompt is the system and user text sent to a model
type Prompt struct {
	System string
	User   string
}

// PromptBuilder renders the memo prompt from the source text
type PromptBuilder struct {
	Instruction         string
	CitationInstruction string
}

// NewPromptBuilder returns a builder with the default instructions
func NewPromptBuilder() PromptBuilder {
	return PromptBuilder{
		Instruction:         DefaultInstruction,
		CitationInstruction: DefaultCitationInstruction,
	}
}

// Build renders the prompt. The citation instruction is appended only for search-grounded models.
func (b PromptBuilder) Build(source string, withCitations bool) Prompt {
	var user strings.Builder
	user.WriteString(contentLead)
	user.WriteString("\n")
	user.WriteString(source)

	if withCitations && b.CitationInstruction != "" {
		user.WriteString("\n\n")
		user.WriteString(b.CitationInstruction)
	}

	return Prompt{
		System: b.Instruction,
		User:   user.String(),
	}
}
