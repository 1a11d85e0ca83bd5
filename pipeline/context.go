// Package pipeline implements C4: the workflow registry and run-context
// plumbing that drives the seven built-in workflows in declared order,
// per §4.4.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/storage"
	"github.com/tangerg/graphrag/tokenizer"
)

// Callbacks receives workflow lifecycle notifications, matching §4.4 step 2.
type Callbacks interface {
	WorkflowStarted(name string)
	WorkflowCompleted(name string, err error)
}

// NoopCallbacks discards every notification; the Runner default.
type NoopCallbacks struct{}

func (NoopCallbacks) WorkflowStarted(string)          {}
func (NoopCallbacks) WorkflowCompleted(string, error) {}

// Stats accumulates run-wide counters (§4.4 step 4). The runtime is the
// sole writer; workflow code reports through the RunContext it is given,
// never by holding its own reference across calls.
type Stats struct {
	NumDocuments int
	NumTextUnits int
	Durations    map[string]time.Duration
	TokenCost    map[string]int
}

// NewStats returns a zeroed, ready-to-use Stats.
func NewStats() *Stats {
	return &Stats{Durations: map[string]time.Duration{}, TokenCost: map[string]int{}}
}

// Services resolves the string model-id keys in config (e.g.
// ExtractGraph.ModelID, Heuristics.EmbeddingModelID) to the concrete
// collaborators a workflow calls through, per §9's "keyed service
// resolution" design note.
type Services struct {
	ChatClients         map[string]model.ChatClient
	EmbeddingGenerators map[string]model.EmbeddingGenerator
	Tokenizers          *tokenizer.Registry
}

// NewServices returns an empty Services bound to the process-wide
// tokenizer registry; callers populate ChatClients/EmbeddingGenerators
// before running the pipeline.
func NewServices() *Services {
	return &Services{
		ChatClients:         map[string]model.ChatClient{},
		EmbeddingGenerators: map[string]model.EmbeddingGenerator{},
		Tokenizers:          tokenizer.Get(),
	}
}

const (
	defaultChatModelID      = "default_chat_model"
	defaultEmbeddingModelID = "default_embedding_model"
)

// Chat resolves modelID (falling back to the default key when empty) to a
// ChatClient, or nil if none is wired in for that key.
func (s *Services) Chat(modelID string) model.ChatClient {
	if s == nil {
		return nil
	}
	if modelID == "" {
		modelID = defaultChatModelID
	}
	return s.ChatClients[modelID]
}

// Embedder resolves modelID (falling back to the default key when empty)
// to an EmbeddingGenerator, or nil if none is wired in for that key.
func (s *Services) Embedder(modelID string) model.EmbeddingGenerator {
	if s == nil {
		return nil
	}
	if modelID == "" {
		modelID = defaultEmbeddingModelID
	}
	return s.EmbeddingGenerators[modelID]
}

// RunContext is passed to every workflow invocation (§4.4 step 3).
// input_storage holds source documents; output_storage is where table
// results are written (and, for table-presence resume checks, read
// back); previous_storage is the output_storage of an earlier run being
// resumed from, or nil for a fresh run; cache is a separate handle for
// small cross-workflow bookkeeping (here, completion markers).
type RunContext struct {
	InputStorage    storage.Storage
	OutputStorage   storage.Storage
	PreviousStorage storage.Storage
	Cache           storage.Storage
	Callbacks       Callbacks
	Stats           *Stats
	State           map[string]any
	Services        *Services
	Items           map[string]any

	// RunID identifies this run for log correlation. Run assigns one via
	// uuid.NewString() when empty, so callers only need to set it
	// themselves to join logs against an externally generated id.
	RunID string
	// Logger receives per-workflow start/stop/error records. Run defaults
	// it to slog.Default() when nil.
	Logger *slog.Logger
}
