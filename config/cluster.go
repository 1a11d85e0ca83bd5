package config

// ClusterGraph configures C10, community detection.
type ClusterGraph struct {
	// MaxClusterSize splits any community larger than this many entities
	// into consecutive slices of its member order; 0 disables splitting.
	// That order is BFS-discovery order for connected_components and
	// entity input order for fast_label_propagation.
	MaxClusterSize int
	// UseLargestConnectedComponent keeps, after clustering, only the
	// groups whose size equals the largest group size (ties all kept).
	UseLargestConnectedComponent bool
	// Seed drives every seeded-random decision in C10 (shuffle order,
	// label tie-break) so a run is fully reproducible.
	Seed int64
	// MaxIterations bounds Fast Label Propagation's convergence loop.
	MaxIterations int
	// Algorithm selects fast_label_propagation or connected_components.
	Algorithm Algorithm
}

// DefaultClusterGraph returns Fast Label Propagation with a fixed seed, a
// 10-entity cluster cap, and largest-connected-component filtering on.
func DefaultClusterGraph() ClusterGraph {
	return ClusterGraph{
		MaxClusterSize:               10,
		UseLargestConnectedComponent: true,
		Seed:                         0xDEADBEEF,
		MaxIterations:                100,
		Algorithm:                    AlgorithmFastLabelPropagation,
	}
}
