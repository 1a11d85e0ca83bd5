// Package prompts resolves the prompt templates C8 (graph extraction) and
// C11 (community summarization) render before calling a model.ChatClient.
// Resolution order, grounded on Tangerg-lynx's convention of layering a
// caller-supplied override over a package-default constant
// (ai/core/chat/client/system_prompt.go and prompt_system.go): an explicit
// config override string wins outright; otherwise the built-in default for
// that call site is used. There is no on-disk prompts/ directory
// convention in this offline pipeline, since templates are Go string
// constants compiled into the binary, not runtime assets.
package prompts

import "github.com/tangerg/graphrag/xstrings"

// ExtractionAttrs fills the default extraction templates.
type ExtractionAttrs struct {
	EntityTypes []string
	Text        string
	Gleaning    bool
}

// SummaryAttrs fills the default community-summarization templates.
type SummaryAttrs struct {
	EntityNames       []string
	RelationshipLines []string
	MaxLength         int
}

// ResolveExtractionSystem returns override if non-empty, else the built-in
// extraction system prompt.
func ResolveExtractionSystem(override string) string {
	if override != "" {
		return override
	}
	return defaultExtractionSystemPrompt
}

// ResolveExtractionUser renders override (or the built-in extraction user
// template) against attrs.
func ResolveExtractionUser(override string, attrs ExtractionAttrs) (string, error) {
	tpl := override
	if tpl == "" {
		tpl = defaultExtractionUserPrompt
	}
	return xstrings.RenderTemplate(tpl, attrs)
}

// ResolveSummarySystem returns override if non-empty, else the built-in
// community-summarization system prompt.
func ResolveSummarySystem(override string) string {
	if override != "" {
		return override
	}
	return defaultSummarySystemPrompt
}

// ResolveSummaryUser renders override (or the built-in summarization user
// template) against attrs.
func ResolveSummaryUser(override string, attrs SummaryAttrs) (string, error) {
	tpl := override
	if tpl == "" {
		tpl = defaultSummaryUserPrompt
	}
	return xstrings.RenderTemplate(tpl, attrs)
}

const defaultExtractionSystemPrompt = `You are a knowledge graph extraction assistant. Given a block of text, ` +
	`identify all entities and the relationships between them. Respond only with JSON.`

const defaultExtractionUserPrompt = `Entity types to extract: {{range .EntityTypes}}{{.}} {{end}}
{{if .Gleaning}}Some entities and relationships may have been missed in a prior pass. Find anything additional.
{{end}}
Text:
{{.Text}}

Respond with a JSON object of the form:
{"entities": [{"title": "...", "type": "...", "description": "..."}],
 "relationships": [{"source": "...", "target": "...", "description": "...", "weight": 1.0}]}`

const defaultSummarySystemPrompt = `You are summarizing a community of related entities extracted from a ` +
	`document corpus. Write a concise report describing the community's theme and key relationships.`

const defaultSummaryUserPrompt = `Entities: {{range .EntityNames}}{{.}}; {{end}}

Relationships:
{{range .RelationshipLines}}{{.}}
{{end}}

Write a summary of at most {{.MaxLength}} words.`
