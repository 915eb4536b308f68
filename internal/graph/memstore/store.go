// Package memstore is the in-process reference implementation of
// graph.Library. It parses a small N-Triples-like ontology format and
// executes a basic-graph-pattern subset of SPARQL sufficient to exercise
// the bounded tool surface (C1) and verification injector (C4) in tests.
// A production deployment swaps this for a real RDF/SPARQL engine behind
// the same graph.Library interface.
package memstore

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/model"
)

const (
	rdfType      = "rdf:type"
	rdfsLabel    = "rdfs:label"
	rdfsComment  = "rdfs:comment"
	rdfsSubclass = "rdfs:subClassOf"
	rdfsDomain   = "rdfs:domain"
	rdfsRange    = "rdfs:range"
	skosPrefLbl  = "skos:prefLabel"
	schemaName   = "schema:name"
	owlClass     = "owl:Class"
	owlObjProp   = "owl:ObjectProperty"
	owlDataProp  = "owl:DatatypeProperty"
)

var labelPredicates = map[string]bool{
	rdfsLabel:   true,
	skosPrefLbl: true,
	schemaName:  true,
}

// Triple is one RDF statement, with terms already prefix-expanded or kept
// as compact-form prefixed names (e.g. "ex:Activity").
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

type handle struct{ id string }

func (h handle) ID() string { return h.id }

// Store is a single loaded ontology: its triples plus derived indices.
type Store struct {
	id       string
	triples  []Triple
	prefixes map[string]string
}

// Library implements graph.Library over in-process Stores keyed by handle
// id. A single Library is meant to be shared across every Load/Query call
// for the lifetime of a process (or a test).
type Library struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

func New() *Library { return &Library{stores: map[string]*Store{}} }

func (l *Library) Load(_ context.Context, path string) (graph.Handle, *model.GraphMeta, error) {
	store, err := l.parseFile(path)
	if err != nil {
		return nil, nil, err
	}
	return handle{id: store.id}, buildGraphMeta(store), nil
}

// LoadTriples is a test-oriented entry point that builds a Store directly
// from an in-memory triple set, bypassing file parsing.
func LoadTriples(id string, triples []Triple, prefixes map[string]string) (graph.Handle, *model.GraphMeta, *Library) {
	store := &Store{id: id, triples: triples, prefixes: prefixes}
	lib := New()
	lib.register(store)
	return handle{id: id}, buildGraphMeta(store), lib
}

func (l *Library) register(s *Store) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stores[s.id] = s
}

func (l *Library) lookup(id string) (*Store, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.stores[id]
	return s, ok
}

func (l *Library) parseFile(path string) (*Store, error) {
	// Accepted format: one triple per line, "subject predicate object",
	// whitespace-separated, terms given in compact prefixed form
	// (ex:Activity) or absolute IRIs in angle brackets. Lines starting
	// with '#' are comments; a "@prefix" line binds a namespace.
	f, openErr := openFile(path)
	if openErr != nil {
		return nil, fmt.Errorf("%w: %s (%v)", graph.ErrNotFound, path, openErr)
	}
	defer f.Close()

	store := &Store{id: path, prefixes: map[string]string{}}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@prefix") {
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				prefix := strings.TrimSuffix(fields[1], ":")
				iri := strings.Trim(fields[2], "<>.")
				store.prefixes[prefix] = iri
			}
			continue
		}
		parts := splitTriple(line)
		if len(parts) != 3 {
			continue
		}
		store.triples = append(store.triples, Triple{Subject: parts[0], Predicate: parts[1], Object: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ontology %s: %w", path, err)
	}

	l.register(store)
	return store, nil
}

// splitTriple splits a line into exactly subject/predicate/object, joining
// any trailing tokens back into the object (so object literals containing
// spaces survive).
func splitTriple(line string) []string {
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil
	}
	obj := strings.Join(fields[2:], " ")
	return []string{fields[0], fields[1], strings.Trim(obj, `"`)}
}

func buildGraphMeta(s *Store) *model.GraphMeta {
	meta := &model.GraphMeta{
		OntologyID:    s.id,
		TripleCount:   int64(len(s.triples)),
		Labels:        map[string]string{},
		Comments:      map[string]string{},
		ReverseLabels: map[string][]string{},
		Subclasses:    map[string][]string{},
		Domains:       map[string][]string{},
		Ranges:        map[string][]string{},
		Prefixes:      s.prefixes,
		DefaultPrefix: "ex",
	}

	classSet := map[string]bool{}
	objPropSet := map[string]bool{}
	dataPropSet := map[string]bool{}

	for _, t := range s.triples {
		switch {
		case t.Predicate == rdfType && t.Object == owlClass:
			classSet[t.Subject] = true
		case t.Predicate == rdfType && t.Object == owlObjProp:
			objPropSet[t.Subject] = true
		case t.Predicate == rdfType && t.Object == owlDataProp:
			dataPropSet[t.Subject] = true
		case labelPredicates[t.Predicate]:
			meta.Labels[t.Subject] = t.Object
			key := strings.ToLower(t.Object)
			meta.ReverseLabels[key] = append(meta.ReverseLabels[key], t.Subject)
		case t.Predicate == rdfsComment:
			meta.Comments[t.Subject] = t.Object
		case t.Predicate == rdfsSubclass:
			meta.Subclasses[t.Object] = append(meta.Subclasses[t.Object], t.Subject)
		case t.Predicate == rdfsDomain:
			meta.Domains[t.Subject] = append(meta.Domains[t.Subject], t.Object)
		case t.Predicate == rdfsRange:
			meta.Ranges[t.Subject] = append(meta.Ranges[t.Subject], t.Object)
		}
	}

	meta.Classes = sortedKeys(classSet)
	meta.ObjectProperties = sortedKeys(objPropSet)
	meta.DatatypeProperties = sortedKeys(dataPropSet)
	return meta
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
