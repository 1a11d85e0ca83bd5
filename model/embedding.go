package model

import "context"

// EmbeddingGenerator is implemented by whatever embedding collaborator C7
// (semantic text-unit deduplication) is configured to call. Vectors are
// returned in input order, one per requested text.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
