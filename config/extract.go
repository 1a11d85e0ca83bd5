package config

// ExtractGraph configures C8, the LLM-driven graph extraction workflow.
type ExtractGraph struct {
	// ModelID names the chat collaborator used for extraction calls.
	ModelID string
	// SystemPrompt overrides the built-in extraction system prompt when
	// non-empty; see prompts.ResolveExtractionSystem.
	SystemPrompt string
	// UserPrompt overrides the built-in extraction user-prompt template
	// when non-empty.
	UserPrompt string
	// EntityTypes restricts extraction to the given entity type labels.
	EntityTypes []string
	// MaxGleanings bounds the number of additional "anything missed?"
	// follow-up calls made per text unit after the first extraction pass.
	MaxGleanings int
}

// DefaultExtractGraph returns defaults covering the five entity types
// called out in §4.3, one gleaning pass, and no prompt overrides.
func DefaultExtractGraph() ExtractGraph {
	return ExtractGraph{
		ModelID:      "default_chat_model",
		EntityTypes:  []string{"organization", "person", "geo", "event", "concept"},
		MaxGleanings: 1,
	}
}
