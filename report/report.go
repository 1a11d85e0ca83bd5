// Package report implements C11: summarizing each detected community with
// an LLM call (or a deterministic fallback) and extracting keywords from
// the resulting summary.
package report

// CommunityReport is the summarized form of a community.Community.
type CommunityReport struct {
	CommunityID  string   `json:"community_id"`
	Level        int      `json:"level"`
	EntityTitles []string `json:"entity_titles"`
	Summary      string   `json:"summary"`
	Keywords     []string `json:"keywords"`
}
