// Package graphstore provides the narrow client surface the audit trail
// needs from the underlying graph database. The store's own engine,
// schema management and transaction mechanics live behind this interface;
// the audit subsystem only issues parameterized statements through it.
package graphstore

import (
	"context"

	dErrors "graphtrail/pkg/domain-errors"
)

// Error Contract:
// All client implementations follow this error pattern:
// - Return an error matching ErrUnavailable on connectivity loss
// - Return an error matching ErrConstraintViolation on uniqueness conflicts
// - Return nil for successful operations
var (
	ErrUnavailable         = dErrors.New(dErrors.CodeUnavailable, "graph store unavailable")
	ErrConstraintViolation = dErrors.New(dErrors.CodeConflict, "uniqueness constraint violated")
)

// WriteSummary reports the counters of a single write statement.
type WriteSummary struct {
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

// Record is one row returned by a read statement, keyed by the names in
// the statement's RETURN clause.
type Record map[string]any

// Client executes statements against the graph store. Implementations own
// connection pooling and timeout policy; callers issue one statement per
// logical operation and perform no client-side locking or coalescing.
type Client interface {
	ExecuteWrite(ctx context.Context, statement string, params map[string]any) (WriteSummary, error)
	ExecuteRead(ctx context.Context, statement string, params map[string]any) ([]Record, error)
	EnsureIndex(ctx context.Context, label, property string, unique bool) error
	Close(ctx context.Context) error
}
