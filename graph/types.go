// Package graph implements C8 (LLM-driven extraction with aggregation)
// and C9 (heuristics + finalization) over EntitySeed/Entity and
// RelationshipSeed/Relationship records (§3).
package graph

// EntitySeed is the aggregated, not-yet-finalized form of an entity: no id
// or human_readable_id or degree yet.
type EntitySeed struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	TextUnitIds []string `json:"text_unit_ids"`
	Frequency   int      `json:"frequency"`
}

// Entity is a finalized EntitySeed: deterministic id, dense rank, and
// computed degree (§4.9).
type Entity struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Type              string    `json:"type"`
	Description       string    `json:"description"`
	TextUnitIds       []string  `json:"text_unit_ids"`
	Frequency         int       `json:"frequency"`
	HumanReadableID   int       `json:"human_readable_id"`
	Degree            int       `json:"degree"`
	X                 float64   `json:"x,omitempty"`
	Y                 float64   `json:"y,omitempty"`
	DescriptionVector []float64 `json:"description_embedding,omitempty"`
}

// RelationshipSeed is the aggregated, not-yet-finalized form of a
// relationship.
type RelationshipSeed struct {
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Description   string   `json:"description"`
	Weight        float64  `json:"weight"`
	TextUnitIds   []string `json:"text_unit_ids"`
	Type          string   `json:"type"`
	Bidirectional bool     `json:"bidirectional"`
}

// Relationship is a finalized RelationshipSeed: deterministic id, dense
// rank, and combined degree (§4.9).
type Relationship struct {
	ID              string   `json:"id"`
	Source          string   `json:"source"`
	Target          string   `json:"target"`
	Description     string   `json:"description"`
	Weight          float64  `json:"weight"`
	TextUnitIds     []string `json:"text_unit_ids"`
	Type            string   `json:"type"`
	Bidirectional   bool     `json:"bidirectional"`
	HumanReadableID int      `json:"human_readable_id"`
	CombinedDegree  int      `json:"combined_degree"`
}
