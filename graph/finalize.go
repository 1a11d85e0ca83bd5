package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tangerg/graphrag/hash"
	"github.com/tangerg/graphrag/pipelineerr"
)

// Finalize implements §4.9's finalization steps: deterministic id
// assignment, degree computation, human_readable_id ranking, and
// endpoint validation (dropping relationships whose endpoints are
// missing, failing the workflow if that drops ≥50% of them).
func Finalize(entitySeeds []EntitySeed, relationshipSeeds []RelationshipSeed) ([]Entity, []Relationship, error) {
	validSeeds, dropped := dropDanglingRelationships(entitySeeds, relationshipSeeds)
	if len(relationshipSeeds) > 0 && dropped*2 >= len(relationshipSeeds) {
		return nil, nil, pipelineerr.Validation(
			fmt.Sprintf("dropped %d of %d relationships (endpoints not in entity table), exceeding the 50%% guard", dropped, len(relationshipSeeds)))
	}

	degree := computeDegree(entitySeeds, validSeeds)

	entities := make([]Entity, len(entitySeeds))
	for i, s := range entitySeeds {
		entities[i] = Entity{
			ID:          hash.Hash(hash.Of("title", strings.ToLower(s.Title))),
			Title:       s.Title,
			Type:        s.Type,
			Description: s.Description,
			TextUnitIds: s.TextUnitIds,
			Frequency:   s.Frequency,
			Degree:      degree[normalizeKey(s.Title)],
		}
	}
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Frequency != entities[j].Frequency {
			return entities[i].Frequency > entities[j].Frequency
		}
		return entities[i].Title < entities[j].Title
	})
	for i := range entities {
		entities[i].HumanReadableID = i
	}

	relationships := make([]Relationship, len(validSeeds))
	for i, s := range validSeeds {
		combined := degree[normalizeKey(s.Source)] + degree[normalizeKey(s.Target)]
		relationships[i] = Relationship{
			ID: hash.Hash(
				hash.Of("source", strings.ToLower(s.Source)),
				hash.Of("target", strings.ToLower(s.Target)),
				hash.Of("type", s.Type),
			),
			Source:         s.Source,
			Target:         s.Target,
			Description:    s.Description,
			Weight:         s.Weight,
			TextUnitIds:    s.TextUnitIds,
			Type:           s.Type,
			Bidirectional:  s.Bidirectional,
			CombinedDegree: combined,
		}
	}
	sort.SliceStable(relationships, func(i, j int) bool {
		if relationships[i].CombinedDegree != relationships[j].CombinedDegree {
			return relationships[i].CombinedDegree > relationships[j].CombinedDegree
		}
		if relationships[i].Source != relationships[j].Source {
			return relationships[i].Source < relationships[j].Source
		}
		return relationships[i].Target < relationships[j].Target
	})
	for i := range relationships {
		relationships[i].HumanReadableID = i
	}

	return entities, relationships, nil
}

// dropDanglingRelationships removes any relationship whose source or
// target does not resolve to an existing entity title (case-insensitive),
// returning the surviving seeds and the number dropped.
func dropDanglingRelationships(entitySeeds []EntitySeed, relationshipSeeds []RelationshipSeed) ([]RelationshipSeed, int) {
	titles := make(map[string]bool, len(entitySeeds))
	for _, e := range entitySeeds {
		titles[normalizeKey(e.Title)] = true
	}
	var kept []RelationshipSeed
	dropped := 0
	for _, r := range relationshipSeeds {
		if titles[normalizeKey(r.Source)] && titles[normalizeKey(r.Target)] {
			kept = append(kept, r)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// computeDegree counts, per normalized entity title, the number of
// distinct relationships incident to it.
func computeDegree(entitySeeds []EntitySeed, relationshipSeeds []RelationshipSeed) map[string]int {
	degree := make(map[string]int, len(entitySeeds))
	for _, e := range entitySeeds {
		degree[normalizeKey(e.Title)] = 0
	}
	for _, r := range relationshipSeeds {
		degree[normalizeKey(r.Source)]++
		degree[normalizeKey(r.Target)]++
	}
	return degree
}
