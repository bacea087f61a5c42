package graphdb

import "context"

// Statement is one Cypher statement with its parameters.
type Statement struct {
	Cypher string
	Params map[string]any
}

// WriteSummary aggregates the change counters of a write.
type WriteSummary struct {
	NodesCreated         int `json:"nodes_created"`
	RelationshipsCreated int `json:"relationships_created"`
	PropertiesSet        int `json:"properties_set"`
}

// Add folds another summary into this one.
func (s *WriteSummary) Add(other WriteSummary) {
	s.NodesCreated += other.NodesCreated
	s.RelationshipsCreated += other.RelationshipsCreated
	s.PropertiesSet += other.PropertiesSet
}

// Querier is the narrow query surface the graph layers depend on. The
// production implementation is Client; tests substitute an in-memory fake.
type Querier interface {
	// Exec runs one statement in its own auto-commit transaction. Schema
	// commands must go through here; they cannot join a transaction function.
	Exec(ctx context.Context, cypher string, params map[string]any) error

	// ReadQuery runs a read transaction and collects every record as a map.
	ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// WriteBatch runs statements sequentially in one write transaction.
	WriteBatch(ctx context.Context, statements []Statement) (WriteSummary, error)
}
