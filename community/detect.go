package community

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/graph"
	"github.com/tangerg/graphrag/xrandom"
	"github.com/tangerg/graphrag/xsets"
)

// Detect clusters entities and relationships into communities per §4.10.
// Empty entity input yields an empty community table.
func Detect(entities []graph.Entity, relationships []graph.Relationship, cfg config.ClusterGraph) []Community {
	if len(entities) == 0 {
		return nil
	}

	ids := make([]string, len(entities))
	titleToID := make(map[string]string, len(entities))
	entityByID := make(map[string]graph.Entity, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
		titleToID[normalizeTitle(e.Title)] = e.ID
		entityByID[e.ID] = e
	}

	adjacency := buildAdjacency(ids, relationships, titleToID)
	source := xrandom.New(cfg.Seed)

	var groups [][]string
	switch cfg.Algorithm {
	case config.AlgorithmConnectedComponents:
		groups = connectedComponents(ids, adjacency, source)
	default:
		groups = fastLabelPropagation(ids, adjacency, source, cfg.MaxIterations)
	}

	if cfg.UseLargestConnectedComponent {
		groups = keepLargest(groups)
	}
	if cfg.MaxClusterSize > 0 {
		groups = splitOversized(groups, cfg.MaxClusterSize)
	}

	period := time.Now().UTC().Format(time.DateOnly)
	communities := make([]Community, 0, len(groups))
	for i, group := range groups {
		c := buildCommunity(i+1, group, entityByID, relationships, titleToID)
		c.Period = period
		communities = append(communities, c)
	}
	return communities
}

// buildAdjacency constructs an undirected weighted adjacency list from
// relationships, keyed by entity id. A relationship's weight defaults to 1
// when absent (the zero value). Relationship endpoints are entity titles;
// any endpoint that does not resolve to a known entity is ignored.
func buildAdjacency(ids []string, relationships []graph.Relationship, titleToID map[string]string) map[string]map[string]float64 {
	adjacency := make(map[string]map[string]float64, len(ids))
	for _, id := range ids {
		adjacency[id] = map[string]float64{}
	}
	for _, r := range relationships {
		sourceID, sourceOK := titleToID[normalizeTitle(r.Source)]
		targetID, targetOK := titleToID[normalizeTitle(r.Target)]
		if !sourceOK || !targetOK || sourceID == targetID {
			continue
		}
		weight := r.Weight
		if weight == 0 {
			weight = 1
		}
		adjacency[sourceID][targetID] += weight
		adjacency[targetID][sourceID] += weight
	}
	return adjacency
}

// fastLabelPropagation assigns each node the label held by the majority
// (by weighted edge support) of its neighbors, iterating until a full
// pass makes no change or max_iterations is reached. Ties among
// maximum-support labels, and the per-iteration visit order, are broken
// using the seeded source so a run is fully reproducible.
func fastLabelPropagation(ids []string, adjacency map[string]map[string]float64, source *xrandom.Source, maxIterations int) [][]string {
	label := make(map[string]string, len(ids))
	for _, id := range ids {
		label[id] = id
	}

	order := append([]string(nil), ids...)
	if maxIterations <= 0 {
		maxIterations = 1
	}
	for iter := 0; iter < maxIterations; iter++ {
		source.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		changed := false
		for _, node := range order {
			neighbors := adjacency[node]
			if len(neighbors) == 0 {
				continue
			}
			support := map[string]float64{}
			for neighbor, weight := range neighbors {
				support[label[neighbor]] += weight
			}
			best := bestLabels(support)
			newLabel := best[0]
			if len(best) > 1 {
				newLabel = xrandom.Pick(source, best)
			}
			if newLabel != label[node] {
				label[node] = newLabel
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return groupByLabel(ids, label)
}

// bestLabels returns, in deterministic (sorted) order, the labels tied for
// maximum weighted support.
func bestLabels(support map[string]float64) []string {
	max := 0.0
	for _, v := range support {
		if v > max {
			max = v
		}
	}
	var best []string
	for label, v := range support {
		if v == max {
			best = append(best, label)
		}
	}
	sort.Strings(best)
	return best
}

// groupByLabel partitions ids into groups sharing the same label,
// preserving each group's BFS/input-discovery order (here, the order ids
// are first encountered while scanning in input order).
func groupByLabel(ids []string, label map[string]string) [][]string {
	order := map[string]int{}
	var groups [][]string
	for _, id := range ids {
		l := label[id]
		idx, ok := order[l]
		if !ok {
			idx = len(groups)
			order[l] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], id)
	}
	return groups
}

// connectedComponents is the fallback algorithm: seed-shuffled BFS
// flood-fill over the adjacency graph.
func connectedComponents(ids []string, adjacency map[string]map[string]float64, source *xrandom.Source) [][]string {
	order := append([]string(nil), ids...)
	source.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	visited := map[string]bool{}
	var groups [][]string
	for _, start := range order {
		if visited[start] {
			continue
		}
		var component []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			component = append(component, node)
			neighborOrder := neighborsOf(adjacency[node])
			for _, neighbor := range neighborOrder {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		groups = append(groups, component)
	}
	return groups
}

func neighborsOf(neighbors map[string]float64) []string {
	out := make([]string, 0, len(neighbors))
	for n := range neighbors {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// keepLargest retains only the groups whose size equals the maximum
// group size across all groups, preserving relative order; ties are all
// kept.
func keepLargest(groups [][]string) [][]string {
	if len(groups) == 0 {
		return groups
	}
	max := 0
	for _, g := range groups {
		if len(g) > max {
			max = len(g)
		}
	}
	var out [][]string
	for _, g := range groups {
		if len(g) == max {
			out = append(out, g)
		}
	}
	return out
}

// splitOversized splits any group larger than maxSize into consecutive
// slices of at most maxSize, preserving each group's internal order.
func splitOversized(groups [][]string, maxSize int) [][]string {
	var out [][]string
	for _, g := range groups {
		if len(g) <= maxSize {
			out = append(out, g)
			continue
		}
		for start := 0; start < len(g); start += maxSize {
			end := start + maxSize
			if end > len(g) {
				end = len(g)
			}
			out = append(out, g[start:end])
		}
	}
	return out
}

// buildCommunity assembles a numbered Community from a group of entity
// ids: relationship_ids are every relationship with both endpoints in the
// group, and text_unit_ids are the union of those relationships' text
// units, falling back to the union of member entities' own text units
// when that is empty.
func buildCommunity(number int, group []string, entityByID map[string]graph.Entity, relationships []graph.Relationship, titleToID map[string]string) Community {
	members := xsets.Of(group...)

	var relationshipIDs []string
	textUnits := xsets.New[string]()
	for _, r := range relationships {
		sourceID, sourceOK := titleToID[normalizeTitle(r.Source)]
		targetID, targetOK := titleToID[normalizeTitle(r.Target)]
		if !sourceOK || !targetOK || !members.Contains(sourceID) || !members.Contains(targetID) {
			continue
		}
		relationshipIDs = append(relationshipIDs, r.ID)
		textUnits.AddAll(r.TextUnitIds...)
	}
	sort.Strings(relationshipIDs)

	if textUnits.Size() == 0 {
		for _, id := range group {
			textUnits.AddAll(entityByID[id].TextUnitIds...)
		}
	}

	entityIDs := append([]string(nil), group...)
	sort.Strings(entityIDs)

	textUnitIDs := textUnits.ToSlice()
	sort.Strings(textUnitIDs)

	return Community{
		ID:              number,
		HumanReadableID: number,
		Level:           0,
		ParentID:        -1,
		Children:        []int{},
		Title:           titleFor(number),
		EntityIds:       entityIDs,
		RelationshipIds: relationshipIDs,
		TextUnitIds:     textUnitIDs,
		Size:            len(group),
	}
}

func titleFor(number int) string {
	return "Community " + strconv.Itoa(number)
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
