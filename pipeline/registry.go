package pipeline

import (
	"context"

	"github.com/tangerg/graphrag/config"
)

// Result is returned by a workflow on success; TokensUsed feeds the
// runtime's per-workflow token-cost stat (§4.4 step 4) when non-zero.
type Result struct {
	TokensUsed int
}

// Workflow is a single pipeline stage: reads named tables from rc,
// computes a new table, and writes it back (§4.4).
type Workflow func(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error)

// BuiltinOrder is the declared pipeline order (§4.4).
var BuiltinOrder = []string{
	"load_input_documents",
	"create_base_text_units",
	"heuristic_maintenance",
	"extract_graph",
	"create_communities",
	"community_summaries",
	"create_final_documents",
}

// Registry maps a workflow name to its function, mirroring §4.4's "the
// registry maps a name to such a function."
type Registry struct {
	workflows map[string]Workflow
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{workflows: map[string]Workflow{}}
}

// Register binds name to wf, overwriting any existing registration.
func (r *Registry) Register(name string, wf Workflow) {
	r.workflows[name] = wf
}

// Get looks up the workflow registered under name.
func (r *Registry) Get(name string) (Workflow, bool) {
	wf, ok := r.workflows[name]
	return wf, ok
}

// DefaultRegistry returns a Registry with the seven built-in workflows
// registered under their canonical names.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("load_input_documents", LoadInputDocuments)
	r.Register("create_base_text_units", CreateBaseTextUnits)
	r.Register("heuristic_maintenance", HeuristicMaintenance)
	r.Register("extract_graph", ExtractGraphWorkflow)
	r.Register("create_communities", CreateCommunities)
	r.Register("community_summaries", CommunitySummaries)
	r.Register("create_final_documents", CreateFinalDocuments)
	return r
}
