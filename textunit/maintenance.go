package textunit

import (
	"context"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/xsets"
)

// Maintain runs the three fixed-order heuristic passes from §4.7: a
// per-unit token cap, a per-document token budget, and (if enabled)
// semantic deduplication. The output preserves the original relative
// order of the surviving units.
func Maintain(ctx context.Context, units []TextUnit, cfg config.Heuristics, embedder model.EmbeddingGenerator) ([]TextUnit, error) {
	units = capPerUnit(units, cfg.MaxTokensPerTextUnit)
	units = capPerDocumentBudget(units, cfg.MaxDocumentTokenBudget)

	if !cfg.EnableSemanticDeduplication {
		return units, nil
	}
	return deduplicateSemantically(ctx, units, cfg.SemanticDeduplicationThreshold, embedder)
}

// capPerUnit drops any unit whose token count exceeds maxTokens; 0 means
// no cap.
func capPerUnit(units []TextUnit, maxTokens int) []TextUnit {
	if maxTokens <= 0 {
		return units
	}
	return lo.Filter(units, func(u TextUnit, _ int) bool {
		return u.TokenCount <= maxTokens
	})
}

// capPerDocumentBudget iterates units in input order, maintaining a
// running per-document token sum, and drops units that would push every
// one of their documents' sums over budget; 0 disables the budget.
func capPerDocumentBudget(units []TextUnit, budget int) []TextUnit {
	if budget <= 0 {
		return units
	}
	sums := make(map[string]int)
	kept := make([]TextUnit, 0, len(units))
	for _, u := range units {
		fits := false
		for _, docID := range u.DocumentIds {
			if sums[docID]+u.TokenCount <= budget {
				fits = true
			}
		}
		if !fits {
			continue
		}
		for _, docID := range u.DocumentIds {
			sums[docID] += u.TokenCount
		}
		kept = append(kept, u)
	}
	return kept
}

// deduplicateSemantically embeds every surviving unit's text, then
// greedily merges nearest pairs whose cosine similarity is at least
// threshold into single-linkage clusters. Each cluster's survivor is its
// lexicographically smallest id; non-survivors are dropped and their
// document ids folded into the survivor's.
func deduplicateSemantically(ctx context.Context, units []TextUnit, threshold float64, embedder model.EmbeddingGenerator) ([]TextUnit, error) {
	if len(units) < 2 {
		return units, nil
	}
	texts := lo.Map(units, func(u TextUnit, _ int) string { return u.Text })
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	type pair struct {
		i, j int
		sim  float64
	}
	var pairs []pair
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			sim := cosineSimilarity(vectors[i], vectors[j])
			if sim >= threshold {
				pairs = append(pairs, pair{i, j, sim})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].sim > pairs[b].sim })

	uf := newUnionFind(len(units))
	for _, p := range pairs {
		uf.union(p.i, p.j)
	}

	groups := make(map[int][]int)
	for i := range units {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	survivorOf := make(map[int]int, len(groups))
	for _, members := range groups {
		survivor := members[0]
		for _, m := range members[1:] {
			if units[m].ID < units[survivor].ID {
				survivor = m
			}
		}
		for _, m := range members {
			survivorOf[m] = survivor
		}
	}

	docIDs := make(map[int]xsets.Set[string], len(groups))
	for i, u := range units {
		s, ok := docIDs[survivorOf[i]]
		if !ok {
			s = xsets.New[string]()
			docIDs[survivorOf[i]] = s
		}
		s.AddAll(u.DocumentIds...)
	}

	seen := make(map[int]bool)
	out := make([]TextUnit, 0, len(groups))
	for i, u := range units {
		survivor := survivorOf[i]
		if survivor != i || seen[survivor] {
			continue
		}
		seen[survivor] = true
		merged := u
		merged.DocumentIds = docIDs[survivor].ToSlice()
		sort.Strings(merged.DocumentIds)
		out = append(out, merged)
	}
	return out, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
