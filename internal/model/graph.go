// Package model holds the data types shared across the RLM runtime: the
// graph-meta projection, REPL trajectory records, and ReasoningBank memory
// records.
package model

// GraphMeta is the application's derived view of a loaded ontology. It is
// built once per ontology load and handed to the driver as a read-only
// reference for the duration of a run.
type GraphMeta struct {
	OntologyID  string
	TripleCount int64

	// Classes and Properties hold every known identifier of that kind.
	Classes            []string
	ObjectProperties   []string
	DatatypeProperties []string

	// Labels maps an identifier to its preferred human label, built from
	// configured label predicates (rdfs:label, skos:prefLabel, schema:name, ...).
	Labels map[string]string

	// Comments maps an identifier to its rdfs:comment text, when present.
	Comments map[string]string

	// ReverseLabels indexes lowercased label text back to identifiers, for
	// substring search.
	ReverseLabels map[string][]string

	// Subclasses maps a class identifier to its direct subclasses.
	Subclasses map[string][]string

	// Domains and Ranges map a property identifier to the set of class
	// identifiers declared as its domain/range.
	Domains map[string][]string
	Ranges  map[string][]string

	// Prefixes maps a namespace prefix (e.g. "rdfs") to its IRI.
	Prefixes map[string]string

	// DefaultPrefix is used to expand bare local names in tool inputs.
	DefaultPrefix string
}

// SenseCard is a bounded textual summary of one ontology (<=15000 chars),
// injected once per run as context. The core treats it as an opaque string.
type SenseCard string

const MaxSenseCardChars = 15_000
