package config

// CommunityReports configures C11, community summarization.
type CommunityReports struct {
	// ModelID names the chat collaborator used for summarization calls.
	ModelID string
	// SystemPrompt overrides the built-in summarization system prompt when
	// non-empty; see prompts.ResolveSummarySystem.
	SystemPrompt string
	// UserPrompt overrides the built-in summarization user-prompt template
	// when non-empty.
	UserPrompt string
	// MaxLength caps the summary length the prompt asks the model for, in
	// words.
	MaxLength int
	// MaxInputLength is an input-token cap for a single summarization
	// call. report.Summarizer does not read it: the prompt always lists
	// every member entity and relationship, untruncated.
	MaxInputLength int
}

// DefaultCommunityReports returns a 500-word summary cap and an 8000-token
// input cap.
func DefaultCommunityReports() CommunityReports {
	return CommunityReports{
		ModelID:        "default_chat_model",
		MaxLength:      500,
		MaxInputLength: 8000,
	}
}
