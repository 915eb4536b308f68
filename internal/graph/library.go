// Package graph defines the thin adapter seam between the core and an
// external RDF/SPARQL collaborator. The core never parses RDF or executes
// SPARQL itself (see SPEC_FULL.md §11); it calls through this interface.
package graph

import (
	"context"
	"errors"
	"time"

	"graphrlm.dev/core/internal/model"
)

// ErrNotFound is returned when a parse/load operation cannot locate the
// requested ontology.
var ErrNotFound = errors.New("ontology not found")

// Binding is one row of a SELECT result, or one triple of a CONSTRUCT
// result projected into row shape for uniform handling.
type Binding map[string]string

// QueryResult is the raw result of executing a SPARQL query against a
// Library, before it is wrapped into a model.ResultHandle.
type QueryResult struct {
	Kind      model.ResultKind
	Rows      []Binding
	Columns   []string
	GraphSize int
	Scalar    bool
}

// Library is the collaborator the core delegates RDF parsing and SPARQL
// execution to. A production deployment injects a concrete implementation
// (e.g. backed by a real RDF store); this package also ships memstore, an
// in-process reference implementation sufficient for tests.
type Library interface {
	// Load parses an ontology file and returns an opaque handle plus its
	// derived graph-meta projection.
	Load(ctx context.Context, path string) (Handle, *model.GraphMeta, error)

	// Query executes a SPARQL query against a loaded handle. limit, if
	// nonzero, is injected as a LIMIT clause when the query is a SELECT
	// lacking one of its own.
	Query(ctx context.Context, handle Handle, query string, limit int) (QueryResult, error)
}

// Handle is an opaque reference to one loaded ontology, owned by the
// Library implementation.
type Handle interface {
	ID() string
}

// RemoteClient executes a SPARQL query against an HTTP endpoint. Kept
// separate from Library because the remote path has its own timeout and
// failure taxonomy (endpoint-unreachable, endpoint-timeout, endpoint-error)
// per spec §4.1.
type RemoteClient interface {
	Query(ctx context.Context, endpoint, query string, timeout time.Duration) (QueryResult, error)
}
