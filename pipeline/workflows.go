package pipeline

import (
	"context"

	"go.uber.org/multierr"

	"github.com/tangerg/graphrag/community"
	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/document"
	"github.com/tangerg/graphrag/finaldocs"
	"github.com/tangerg/graphrag/graph"
	"github.com/tangerg/graphrag/input"
	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/report"
	"github.com/tangerg/graphrag/storage"
	"github.com/tangerg/graphrag/textunit"
)

// maxInFlight bounds the fan-out used by extract_graph and
// community_summaries; the pipeline has no dedicated concurrency config
// section, so both stages share this conservative default.
const maxInFlight = 8

// LoadInputDocuments is the "load_input_documents" workflow (C5): discover
// and decode source files into the "documents" table.
func LoadInputDocuments(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	loader := input.NewLoader(cfg.Input)
	documents, err := loader.Load(ctx, rc.InputStorage)
	if err != nil {
		return Result{}, err
	}
	if err := storage.WriteTable(ctx, rc.OutputStorage, "documents", documents); err != nil {
		return Result{}, err
	}
	rc.Stats.NumDocuments = len(documents)
	return Result{}, nil
}

// CreateBaseTextUnits is the "create_base_text_units" workflow (C6):
// chunk every document into the "text_units" table.
func CreateBaseTextUnits(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	documents, err := storage.LoadTable[document.Document](ctx, rc.OutputStorage, "documents")
	if err != nil {
		return Result{}, err
	}

	tok, err := rc.Services.Tokenizers.Tokenizer(cfg.Chunks.EncodingModel)
	if err != nil {
		return Result{}, err
	}

	var units []textunit.TextUnit
	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return Result{}, pipelineerr.Cancelled(err.Error())
		}
		chunks, err := textunit.ChunkDocument(ctx, doc, cfg.Chunks, tok)
		if err != nil {
			return Result{}, err
		}
		units = append(units, chunks...)
	}

	if err := storage.WriteTable(ctx, rc.OutputStorage, "text_units", units); err != nil {
		return Result{}, err
	}
	rc.Stats.NumTextUnits = len(units)
	return Result{}, nil
}

// HeuristicMaintenance is the "heuristic_maintenance" workflow (C7):
// apply the three fixed-order passes and rewrite "text_units". It is a
// no-op pass-through when cfg.Heuristics is the zero value, matching
// §4.7's "runs only when heuristics is non-default."
func HeuristicMaintenance(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	if cfg.Heuristics == (config.Heuristics{}) {
		return Result{}, nil
	}

	units, err := storage.LoadTable[textunit.TextUnit](ctx, rc.OutputStorage, "text_units")
	if err != nil {
		return Result{}, err
	}

	embedder := rc.Services.Embedder(cfg.Heuristics.EmbeddingModelID)
	maintained, err := textunit.Maintain(ctx, units, cfg.Heuristics, embedder)
	if err != nil {
		return Result{}, err
	}

	if err := storage.WriteTable(ctx, rc.OutputStorage, "text_units", maintained); err != nil {
		return Result{}, err
	}
	rc.Stats.NumTextUnits = len(maintained)
	return Result{}, nil
}

// ExtractGraphWorkflow is the "extract_graph" workflow (C8+C9): run the
// LLM extractor over every text unit, apply graph heuristics, finalize,
// and write the "entities" and "relationships" tables.
func ExtractGraphWorkflow(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	units, err := storage.LoadTable[textunit.TextUnit](ctx, rc.OutputStorage, "text_units")
	if err != nil {
		return Result{}, err
	}

	client := rc.Services.Chat(cfg.ExtractGraph.ModelID)
	extractor := graph.NewExtractor(cfg.ExtractGraph, client, nil)
	entitySeeds, relationshipSeeds, err := extractor.Extract(ctx, units, maxInFlight)
	if err != nil {
		return Result{}, err
	}

	enhanced := graph.EnhanceRelationships(relationshipSeeds, cfg.Heuristics)
	if cfg.Heuristics.LinkOrphanEntities {
		enhanced = graph.LinkOrphans(entitySeeds, enhanced, cfg.Heuristics)
	}

	entities, relationships, err := graph.Finalize(entitySeeds, enhanced)
	if err != nil {
		return Result{}, err
	}

	writeEntitiesErr := storage.WriteTable(ctx, rc.OutputStorage, "entities", entities)
	writeRelationshipsErr := storage.WriteTable(ctx, rc.OutputStorage, "relationships", relationships)
	if err := multierr.Combine(writeEntitiesErr, writeRelationshipsErr); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// CreateCommunities is the "create_communities" workflow (C10): cluster
// the entity-relationship graph and write the "communities" table.
func CreateCommunities(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	entities, err := storage.LoadTable[graph.Entity](ctx, rc.OutputStorage, "entities")
	if err != nil {
		return Result{}, err
	}
	relationships, err := storage.LoadTable[graph.Relationship](ctx, rc.OutputStorage, "relationships")
	if err != nil {
		return Result{}, err
	}

	communities := community.Detect(entities, relationships, cfg.ClusterGraph)
	if err := storage.WriteTable(ctx, rc.OutputStorage, "communities", communities); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// CommunitySummaries is the "community_summaries" workflow (C11):
// summarize every community and write the "community_reports" table.
func CommunitySummaries(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	communities, err := storage.LoadTable[community.Community](ctx, rc.OutputStorage, "communities")
	if err != nil {
		return Result{}, err
	}
	entities, err := storage.LoadTable[graph.Entity](ctx, rc.OutputStorage, "entities")
	if err != nil {
		return Result{}, err
	}
	relationships, err := storage.LoadTable[graph.Relationship](ctx, rc.OutputStorage, "relationships")
	if err != nil {
		return Result{}, err
	}

	client := rc.Services.Chat(cfg.CommunityReports.ModelID)
	summarizer := report.NewSummarizer(cfg.CommunityReports, client, nil)
	reports, err := summarizer.Summarize(ctx, communities, entities, relationships, maxInFlight)
	if err != nil {
		return Result{}, err
	}

	if err := storage.WriteTable(ctx, rc.OutputStorage, "community_reports", reports); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// CreateFinalDocuments is the "create_final_documents" workflow (C12):
// back-link text units onto their source documents and rewrite the
// "documents" table.
func CreateFinalDocuments(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) (Result, error) {
	documents, err := storage.LoadTable[document.Document](ctx, rc.OutputStorage, "documents")
	if err != nil {
		return Result{}, err
	}
	units, err := storage.LoadTable[textunit.TextUnit](ctx, rc.OutputStorage, "text_units")
	if err != nil {
		return Result{}, err
	}

	linked := finaldocs.LinkTextUnits(documents, units)
	if err := storage.WriteTable(ctx, rc.OutputStorage, "documents", linked); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
