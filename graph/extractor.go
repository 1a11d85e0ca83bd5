package graph

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/prompts"
	"github.com/tangerg/graphrag/textunit"
)

// Extractor runs C8 over a set of text units: one chat call per unit, with
// bounded parallel fan-out and order-preserving aggregation (§5, "the
// defined order is input order of text units").
type Extractor struct {
	cfg    config.ExtractGraph
	client model.ChatClient
	log    *slog.Logger
}

// NewExtractor builds an Extractor bound to cfg and client.
func NewExtractor(cfg config.ExtractGraph, client model.ChatClient, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, client: client, log: log}
}

// Extract calls the configured chat client once per unit (bounded by
// maxInFlight concurrent calls), then folds every response into the two
// aggregators in unit-input order, emitting seeds (§4.8).
func (e *Extractor) Extract(ctx context.Context, units []textunit.TextUnit, maxInFlight int) ([]EntitySeed, []RelationshipSeed, error) {
	responses := make([]*extractionResponse, len(units))

	g, gctx := errgroup.WithContext(ctx)
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	g.SetLimit(maxInFlight)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if gctx.Err() != nil {
				return pipelineerr.Cancelled(gctx.Err().Error())
			}
			resp, err := e.extractOne(gctx, unit)
			if err != nil {
				if isCancelled(err) {
					return err
				}
				e.log.Warn("graph extraction failed for text unit", slog.String("text_unit_id", unit.ID), slog.Any("error", err))
				return nil
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	entityAgg := NewEntityAggregator()
	relationshipAgg := NewRelationshipAggregator()
	entityTypes := make(map[string]bool, len(e.cfg.EntityTypes))
	for _, t := range e.cfg.EntityTypes {
		entityTypes[strings.ToLower(t)] = true
	}

	for i, unit := range units {
		resp := responses[i]
		if resp == nil {
			continue
		}
		for _, ent := range resp.entities {
			if ent.Title == "" {
				continue
			}
			if len(entityTypes) > 0 && ent.Type != "" && !entityTypes[strings.ToLower(ent.Type)] {
				continue
			}
			entityAgg.Add(unit.ID, ent)
		}
		for _, rel := range resp.relationships {
			if rel.Source == "" || rel.Target == "" {
				continue
			}
			relationshipAgg.Add(unit.ID, rel)
		}
	}

	return entityAgg.Seeds(), relationshipAgg.Seeds(), nil
}

type extractionResponse struct {
	entities      []EntityCandidate
	relationships []RelationshipCandidate
}

// extractOne runs the initial extraction call for unit, then up to
// cfg.MaxGleanings follow-up "anything missed?" calls in the same
// conversation (§4.3), merging every pass's entities/relationships.
// Gleaning stops early once a pass returns no entities and no
// relationships, or returns output that does not parse.
func (e *Extractor) extractOne(ctx context.Context, unit textunit.TextUnit) (*extractionResponse, error) {
	system := prompts.ResolveExtractionSystem(e.cfg.SystemPrompt)
	user, err := prompts.ResolveExtractionUser(e.cfg.UserPrompt, prompts.ExtractionAttrs{
		EntityTypes: e.cfg.EntityTypes,
		Text:        unit.Text,
	})
	if err != nil {
		return nil, pipelineerr.ExtractionParse(err.Error())
	}

	messages := []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: user},
	}

	result, err := e.client.Chat(ctx, messages)
	if err != nil {
		return nil, pipelineerr.Model(err.Error())
	}
	agg, err := parseExtractionResponse(result.Content)
	if err != nil {
		return nil, err
	}

	for i := 0; i < e.cfg.MaxGleanings; i++ {
		if ctx.Err() != nil {
			return nil, pipelineerr.Cancelled(ctx.Err().Error())
		}

		gleanUser, err := prompts.ResolveExtractionUser(e.cfg.UserPrompt, prompts.ExtractionAttrs{
			EntityTypes: e.cfg.EntityTypes,
			Text:        unit.Text,
			Gleaning:    true,
		})
		if err != nil {
			return nil, pipelineerr.ExtractionParse(err.Error())
		}
		messages = append(messages,
			model.Message{Role: model.RoleAssistant, Content: result.Content},
			model.Message{Role: model.RoleUser, Content: gleanUser},
		)

		result, err = e.client.Chat(ctx, messages)
		if err != nil {
			return nil, pipelineerr.Model(err.Error())
		}
		glean, err := parseExtractionResponse(result.Content)
		if err != nil {
			e.log.Warn("gleaning pass returned unparseable output, stopping early", slog.String("text_unit_id", unit.ID), slog.Any("error", err))
			break
		}
		if len(glean.entities) == 0 && len(glean.relationships) == 0 {
			break
		}
		agg.entities = append(agg.entities, glean.entities...)
		agg.relationships = append(agg.relationships, glean.relationships...)
	}

	return agg, nil
}

// parseExtractionResponse tolerantly decodes the shape from §4.8 step 2
// using gjson, so unexpected or missing fields never fail the whole call.
func parseExtractionResponse(raw string) (*extractionResponse, error) {
	if !gjson.Valid(raw) {
		return nil, pipelineerr.ExtractionParse("response is not valid JSON")
	}
	parsed := gjson.Parse(raw)

	resp := &extractionResponse{}
	for _, e := range parsed.Get("entities").Array() {
		resp.entities = append(resp.entities, EntityCandidate{
			Title:         strings.TrimSpace(e.Get("title").String()),
			Type:          strings.TrimSpace(e.Get("type").String()),
			Description:   strings.TrimSpace(e.Get("description").String()),
			Confidence:    e.Get("confidence").Float(),
			HasConfidence: e.Get("confidence").Exists(),
		})
	}
	for _, r := range parsed.Get("relationships").Array() {
		resp.relationships = append(resp.relationships, RelationshipCandidate{
			Source:        strings.TrimSpace(r.Get("source").String()),
			Target:        strings.TrimSpace(r.Get("target").String()),
			Type:          strings.TrimSpace(r.Get("type").String()),
			Description:   strings.TrimSpace(r.Get("description").String()),
			Weight:        r.Get("weight").Float(),
			HasWeight:     r.Get("weight").Exists(),
			Bidirectional: r.Get("bidirectional").Bool(),
		})
	}
	return resp, nil
}

func isCancelled(err error) bool {
	return err != nil && pipelineerr.IsCancelled(err)
}
