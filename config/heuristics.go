package config

// Heuristics configures C7, the heuristic text-unit maintenance pass, plus
// the graph heuristics applied during C9 (relationship truncation, orphan
// linking, confidence floor).
type Heuristics struct {
	// EnableSemanticDeduplication turns on the greedy nearest-pair cosine
	// clustering pass over text-unit embeddings.
	EnableSemanticDeduplication bool
	// SemanticDeduplicationThreshold is the minimum cosine similarity at
	// which two text units are folded into one, in [0,1].
	SemanticDeduplicationThreshold float64
	// MaxTokensPerTextUnit caps the token count of any single surviving
	// text unit; 0 disables the cap.
	MaxTokensPerTextUnit int
	// MaxDocumentTokenBudget caps the total token count retained per
	// source document across all its text units; 0 disables the budget.
	MaxDocumentTokenBudget int
	// MaxTextUnitsPerRelationship truncates the text_unit_ids list kept on
	// a finalized relationship, in first-seen order; 0 disables the cap.
	MaxTextUnitsPerRelationship int
	// OrphanLinkMinimumOverlap is the minimum text-unit-id overlap ratio
	// (xsets.OverlapRatio) required to synthesize a co_occurs_with edge
	// between two otherwise-disconnected entities.
	OrphanLinkMinimumOverlap float64
	// OrphanLinkWeight is the weight assigned to synthesized orphan-link
	// relationships.
	OrphanLinkWeight float64
	// EnhanceRelationships clamps relationship weights to a minimum floor
	// (RelationshipConfidenceFloor) when set.
	EnhanceRelationships bool
	// RelationshipConfidenceFloor is the minimum relationship weight
	// enforced when EnhanceRelationships is set.
	RelationshipConfidenceFloor float64
	// MinimumChunkOverlap is retained for parity with the chunker's
	// overlap floor; C6 itself derives overlap from Chunks.Overlap.
	MinimumChunkOverlap int
	// EmbeddingModelID names the embedding collaborator used to compute
	// text-unit vectors for semantic deduplication.
	EmbeddingModelID string
	// LinkOrphanEntities turns on orphan linking in C9.
	LinkOrphanEntities bool
}

// DefaultHeuristics returns conservative heuristic defaults: deduplication
// and orphan linking on, a 0.95 similarity threshold, no token caps.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		EnableSemanticDeduplication:    true,
		SemanticDeduplicationThreshold: 0.95,
		MaxTokensPerTextUnit:           0,
		MaxDocumentTokenBudget:         0,
		MaxTextUnitsPerRelationship:    0,
		OrphanLinkMinimumOverlap:       0.5,
		OrphanLinkWeight:               1.0,
		EnhanceRelationships:           true,
		RelationshipConfidenceFloor:    1.0,
		MinimumChunkOverlap:            0,
		EmbeddingModelID:               "default_embedding_model",
		LinkOrphanEntities:             true,
	}
}
