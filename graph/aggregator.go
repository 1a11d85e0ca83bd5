package graph

import "strings"

// EntityCandidate is one entity as decoded from an LLM extraction
// response, before normalization or filtering (§4.8 step 2).
type EntityCandidate struct {
	Title       string
	Type        string
	Description string
	Confidence  float64
	HasConfidence bool
}

// RelationshipCandidate is one relationship as decoded from an LLM
// extraction response, before filtering.
type RelationshipCandidate struct {
	Source        string
	Target        string
	Type          string
	Description   string
	Weight        float64
	HasWeight     bool
	Bidirectional bool
}

// entityAgg accumulates every occurrence of one normalized entity title.
type entityAgg struct {
	displayTitle    string
	typ             string
	description     string
	hasDescription  bool
	textUnitIds     []string
	seenTextUnit    map[string]bool
	confidenceSum   float64
	occurrences     int
}

// EntityAggregator folds per-text-unit EntityCandidates into EntitySeeds,
// keyed by case-insensitive title (§4.8 step 3, §9 "normalized key"). Add
// must be called in text-unit input order: the shortest-description rule
// is a deterministic tie-break over that order.
type EntityAggregator struct {
	order []string
	byKey map[string]*entityAgg
}

// NewEntityAggregator returns an empty aggregator.
func NewEntityAggregator() *EntityAggregator {
	return &EntityAggregator{byKey: make(map[string]*entityAgg)}
}

// Add folds one candidate observed within textUnitID into the aggregator.
func (a *EntityAggregator) Add(textUnitID string, c EntityCandidate) {
	key := normalizeKey(c.Title)
	agg, ok := a.byKey[key]
	if !ok {
		agg = &entityAgg{
			displayTitle: c.Title,
			typ:          c.Type,
			seenTextUnit: make(map[string]bool),
		}
		a.byKey[key] = agg
		a.order = append(a.order, key)
	}
	if c.Type != "" && agg.typ == "" {
		agg.typ = c.Type
	}
	if c.Description != "" && (!agg.hasDescription || len(c.Description) < len(agg.description)) {
		agg.description = c.Description
		agg.hasDescription = true
	}
	if !agg.seenTextUnit[textUnitID] {
		agg.seenTextUnit[textUnitID] = true
		agg.textUnitIds = append(agg.textUnitIds, textUnitID)
	}
	if c.HasConfidence {
		agg.confidenceSum += c.Confidence
	}
	agg.occurrences++
}

// Seeds emits one EntitySeed per distinct title, in first-seen order
// (§4.8, "after all units").
func (a *EntityAggregator) Seeds() []EntitySeed {
	seeds := make([]EntitySeed, 0, len(a.order))
	for _, key := range a.order {
		agg := a.byKey[key]
		description := agg.description
		if description == "" {
			description = "Entity " + agg.displayTitle
		}
		frequency := agg.occurrences
		if frequency < 1 {
			frequency = 1
		}
		seeds = append(seeds, EntitySeed{
			Title:       agg.displayTitle,
			Type:        agg.typ,
			Description: description,
			TextUnitIds: agg.textUnitIds,
			Frequency:   frequency,
		})
	}
	return seeds
}

// relationshipAgg accumulates every occurrence of one keyed relationship.
type relationshipAgg struct {
	source, target string
	typ            string
	description    string
	bidirectional  bool
	textUnitIds    []string
	seenTextUnit   map[string]bool
	weightSum      float64
	hasWeight      bool
	occurrences    int
}

// RelationshipAggregator folds per-text-unit RelationshipCandidates into
// RelationshipSeeds, keyed by (source, target, type-or-description) per
// §4.8 step 4.
type RelationshipAggregator struct {
	order []string
	byKey map[string]*relationshipAgg
}

// NewRelationshipAggregator returns an empty aggregator.
func NewRelationshipAggregator() *RelationshipAggregator {
	return &RelationshipAggregator{byKey: make(map[string]*relationshipAgg)}
}

// Add folds one candidate observed within textUnitID into the aggregator.
func (a *RelationshipAggregator) Add(textUnitID string, c RelationshipCandidate) {
	disambiguator := c.Type
	if disambiguator == "" {
		disambiguator = c.Description
	}
	key := normalizeKey(c.Source) + "\x00" + normalizeKey(c.Target) + "\x00" + normalizeKey(disambiguator)

	agg, ok := a.byKey[key]
	if !ok {
		agg = &relationshipAgg{
			source:        c.Source,
			target:        c.Target,
			description:   c.Description,
			typ:           c.Type,
			bidirectional: c.Bidirectional,
			seenTextUnit:  make(map[string]bool),
		}
		if agg.typ == "" {
			agg.typ = "related_to"
		}
		a.byKey[key] = agg
		a.order = append(a.order, key)
	}
	if !agg.seenTextUnit[textUnitID] {
		agg.seenTextUnit[textUnitID] = true
		agg.textUnitIds = append(agg.textUnitIds, textUnitID)
	}
	if c.HasWeight {
		agg.weightSum += c.Weight
		agg.hasWeight = true
	}
	agg.occurrences++
}

// Seeds emits one RelationshipSeed per distinct key, in first-seen order.
func (a *RelationshipAggregator) Seeds() []RelationshipSeed {
	seeds := make([]RelationshipSeed, 0, len(a.order))
	for _, key := range a.order {
		agg := a.byKey[key]
		description := agg.description
		if description == "" {
			description = agg.source + " relates to " + agg.target
		}
		weight := 0.5
		if agg.hasWeight && agg.occurrences > 0 {
			weight = clamp(agg.weightSum/float64(agg.occurrences), 0, 1)
		}
		seeds = append(seeds, RelationshipSeed{
			Source:        agg.source,
			Target:        agg.target,
			Description:   description,
			Weight:        weight,
			TextUnitIds:   agg.textUnitIds,
			Type:          agg.typ,
			Bidirectional: agg.bidirectional,
		})
	}
	return seeds
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
