package graph

import (
	"sort"
	"strings"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/xsets"
)

// EnhanceRelationships applies the relationship-enhancement heuristic from
// §4.9: clamp weight into [floor,1], truncate text_unit_ids to the first
// max_text_units_per_relationship entries (first-seen order), and
// normalize type by trimming and lowercasing.
func EnhanceRelationships(seeds []RelationshipSeed, cfg config.Heuristics) []RelationshipSeed {
	out := make([]RelationshipSeed, len(seeds))
	for i, s := range seeds {
		if cfg.EnhanceRelationships {
			s.Weight = clamp(s.Weight, cfg.RelationshipConfidenceFloor, 1)
		}
		if cfg.MaxTextUnitsPerRelationship > 0 && len(s.TextUnitIds) > cfg.MaxTextUnitsPerRelationship {
			truncated := make([]string, cfg.MaxTextUnitsPerRelationship)
			copy(truncated, s.TextUnitIds[:cfg.MaxTextUnitsPerRelationship])
			s.TextUnitIds = truncated
		}
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		out[i] = s
	}
	return out
}

// LinkOrphans implements §4.9's orphan-linking step: every entity not
// referenced by any relationship is connected to every sufficiently
// overlapping non-orphan entity with a synthetic bidirectional
// "co_occurs_with" edge. Entities and relationships are matched
// case-insensitively by title.
func LinkOrphans(entities []EntitySeed, relationships []RelationshipSeed, cfg config.Heuristics) []RelationshipSeed {
	referenced := make(map[string]bool, len(relationships)*2)
	for _, r := range relationships {
		referenced[normalizeKey(r.Source)] = true
		referenced[normalizeKey(r.Target)] = true
	}

	var orphans, others []EntitySeed
	for _, e := range entities {
		if referenced[normalizeKey(e.Title)] {
			others = append(others, e)
		} else {
			orphans = append(orphans, e)
		}
	}
	if len(orphans) == 0 {
		return relationships
	}

	var synthetic []RelationshipSeed
	for _, orphan := range orphans {
		orphanSet := xsets.Of(orphan.TextUnitIds...)
		for _, other := range others {
			otherSet := xsets.Of(other.TextUnitIds...)
			if xsets.OverlapRatio(orphanSet, otherSet) >= cfg.OrphanLinkMinimumOverlap {
				overlap := xsets.Intersect(orphanSet, otherSet).ToSlice()
				sort.Strings(overlap)
				synthetic = append(synthetic, RelationshipSeed{
					Source:        orphan.Title,
					Target:        other.Title,
					Description:   orphan.Title + " co-occurs with " + other.Title,
					Weight:        cfg.OrphanLinkWeight,
					TextUnitIds:   overlap,
					Type:          "co_occurs_with",
					Bidirectional: true,
				})
			}
		}
	}
	if len(synthetic) == 0 {
		return relationships
	}
	out := make([]RelationshipSeed, 0, len(relationships)+len(synthetic))
	out = append(out, relationships...)
	out = append(out, synthetic...)
	return out
}
