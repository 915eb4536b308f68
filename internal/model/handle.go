package model

// ResultKind distinguishes the shape of a SPARQL result set.
type ResultKind string

const (
	ResultKindRows   ResultKind = "rows"   // SELECT
	ResultKindGraph  ResultKind = "graph"  // CONSTRUCT / DESCRIBE
	ResultKindScalar ResultKind = "scalar" // ASK
)

// ResultProvenance records where a handle's data came from.
type ResultProvenance string

const (
	ProvenanceLocal   ResultProvenance = "local-ontology"
	ProvenanceRemote  ResultProvenance = "remote-endpoint"
	ProvenanceDerived ResultProvenance = "derived"
)

// Schema describes the columns of a row-shaped result.
type Schema struct {
	Columns  []string
	TermKind map[string]string // column -> RDF term kind (uri, literal, bnode)
}

// ResultHandle is an entry in the per-run Result Handle Registry (C2).
type ResultHandle struct {
	Name       string
	Kind       ResultKind
	Rows       []map[string]string // present when Kind == ResultKindRows
	GraphSize  int                 // present when Kind == ResultKindGraph
	Scalar     bool                // present when Kind == ResultKindScalar
	Schema     Schema
	RowCount   int
	Provenance ResultProvenance
	Query      string
}
