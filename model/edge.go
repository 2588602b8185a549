package model

// EdgeKind represents the type of relationship between two nodes
type EdgeKind string

const (
	// EdgeKindFollows links sequentially adjacent chunks of the same
	// textbook, derived from the sequence index ordering.
	EdgeKindFollows EdgeKind = "follows"
	// EdgeKindSharesTopic links two nodes whose topic keyword sets
	// intersect, within or across textbooks.
	EdgeKindSharesTopic EdgeKind = "shares_topic"
)

// Neighbor identifies an adjacent node together with the kind of edge
// that connects it. Edges are derived data: they are rebuilt with the
// graph and never mutated independently of their endpoint nodes.
type Neighbor struct {
	ID   string   `json:"id"`
	Kind EdgeKind `json:"kind"`
}
