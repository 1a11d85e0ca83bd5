// Package config defines the typed option records for every pipeline
// stage, each with defaults sufficient to run the pipeline with only
// input.storage.base_dir set.
package config

import (
	"github.com/spf13/cast"

	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/tokenizer"
)

// GraphRagConfig is the root configuration aggregating every stage's
// sub-config. The CLI front end (an out-of-scope collaborator) is
// responsible for producing one of these from flags/files; the core only
// ever reads from it.
type GraphRagConfig struct {
	Input            Input
	Chunks           Chunks
	Heuristics       Heuristics
	ExtractGraph     ExtractGraph
	ClusterGraph     ClusterGraph
	CommunityReports CommunityReports
}

// Default returns a GraphRagConfig with every sub-config defaulted. Only
// Input.Storage.BaseDir needs to be set afterward to run the pipeline.
func Default() *GraphRagConfig {
	return &GraphRagConfig{
		Input:            DefaultInput(),
		Chunks:           DefaultChunks(),
		Heuristics:       DefaultHeuristics(),
		ExtractGraph:     DefaultExtractGraph(),
		ClusterGraph:     DefaultClusterGraph(),
		CommunityReports: DefaultCommunityReports(),
	}
}

// Validate checks cross-field invariants that must fail fast, before any
// I/O happens (§7, Configuration errors).
func (c *GraphRagConfig) Validate() error {
	if c.Input.Storage.BaseDir == "" {
		return pipelineerr.Configuration("input.storage.base_dir is required")
	}
	if c.Chunks.Size <= 0 {
		return pipelineerr.Configuration("chunks.size must be > 0")
	}
	if c.Chunks.Overlap < 0 || c.Chunks.Overlap >= c.Chunks.Size {
		return pipelineerr.Configuration("chunks.overlap must be in [0, chunks.size)")
	}
	if c.Heuristics.SemanticDeduplicationThreshold < 0 || c.Heuristics.SemanticDeduplicationThreshold > 1 {
		return pipelineerr.Configuration("heuristics.semantic_deduplication_threshold must be in [0,1]")
	}
	if c.ClusterGraph.Algorithm != AlgorithmFastLabelPropagation && c.ClusterGraph.Algorithm != AlgorithmConnectedComponents {
		return pipelineerr.Configuration("cluster_graph.algorithm must be fast_label_propagation or connected_components")
	}
	return nil
}

// ApplyOverrides coerces a loosely-typed override map (e.g. parsed from a
// config file by the CLI collaborator) onto the typed fields that are
// present as keys, using github.com/spf13/cast for type coercion. Unknown
// keys are ignored; this is intentionally forgiving since overrides come
// from outside the core.
func (c *GraphRagConfig) ApplyOverrides(overrides map[string]any) error {
	if v, ok := overrides["input.storage.base_dir"]; ok {
		c.Input.Storage.BaseDir = cast.ToString(v)
	}
	if v, ok := overrides["chunks.size"]; ok {
		c.Chunks.Size = cast.ToInt(v)
	}
	if v, ok := overrides["chunks.overlap"]; ok {
		c.Chunks.Overlap = cast.ToInt(v)
	}
	if v, ok := overrides["chunks.prepend_metadata"]; ok {
		c.Chunks.PrependMetadata = cast.ToBool(v)
	}
	if v, ok := overrides["chunks.chunk_size_includes_metadata"]; ok {
		c.Chunks.ChunkSizeIncludesMetadata = cast.ToBool(v)
	}
	if v, ok := overrides["chunks.encoding_model"]; ok {
		c.Chunks.EncodingModel = cast.ToString(v)
	}
	if v, ok := overrides["heuristics.enable_semantic_deduplication"]; ok {
		c.Heuristics.EnableSemanticDeduplication = cast.ToBool(v)
	}
	if v, ok := overrides["heuristics.semantic_deduplication_threshold"]; ok {
		c.Heuristics.SemanticDeduplicationThreshold = cast.ToFloat64(v)
	}
	if v, ok := overrides["heuristics.max_tokens_per_text_unit"]; ok {
		c.Heuristics.MaxTokensPerTextUnit = cast.ToInt(v)
	}
	if v, ok := overrides["heuristics.max_document_token_budget"]; ok {
		c.Heuristics.MaxDocumentTokenBudget = cast.ToInt(v)
	}
	if v, ok := overrides["cluster_graph.seed"]; ok {
		c.ClusterGraph.Seed = cast.ToInt64(v)
	}
	if v, ok := overrides["cluster_graph.max_cluster_size"]; ok {
		c.ClusterGraph.MaxClusterSize = cast.ToInt(v)
	}
	return nil
}

// Algorithm enumerates the community-detection strategies (§4.3).
type Algorithm string

const (
	AlgorithmFastLabelPropagation Algorithm = "fast_label_propagation"
	AlgorithmConnectedComponents  Algorithm = "connected_components"
)

// ChunkStrategy enumerates chunking strategies (§4.3). Only Tokens is
// implemented by C6; Sentence is accepted by config validation, and
// textunit.ChunkDocument ignores Strategy and always chunks by tokens.
type ChunkStrategy string

const (
	ChunkStrategyTokens   ChunkStrategy = "tokens"
	ChunkStrategySentence ChunkStrategy = "sentence"
)

// FileType enumerates supported input document encodings (§4.3, §4.5).
type FileType string

const (
	FileTypeText FileType = "text"
	FileTypeCSV  FileType = "csv"
	FileTypeJSON FileType = "json"
)

// defaultEncodingModel is the tokenizer registry key used whenever a
// sub-config leaves its own encoding unset.
const defaultEncodingModel = tokenizer.DefaultEncoding
