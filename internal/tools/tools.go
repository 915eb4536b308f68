// Package tools implements the bounded tool surface (C1): a named mapping
// of callables handed to the iteration driver, each with a concise
// docstring and bounded output. Tools never panic; failures come back as
// {error, message, hint} dicts so a recoverable tool failure never tears
// down the REPL.
package tools

import (
	"context"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/handles"
	"graphrlm.dev/core/internal/model"
)

// SubLLM is the narrow sub-LLM delegation surface llm_query/llm_query_batched
// call through. Call budgeting is enforced by Surface, not by the
// implementation.
type SubLLM interface {
	Complete(ctx context.Context, prompt, context_ string) (string, error)
}

// Surface bundles every collaborator the bounded tool surface needs for one
// run: the loaded ontology's graph-meta, the result handle registry, the
// RDF/SPARQL library, an optional remote client, a budgeted sub-LLM, and
// the per-run note scratchpad.
type Surface struct {
	ctx    context.Context
	meta   *model.GraphMeta
	handle graph.Handle
	lib    graph.Library
	remote graph.RemoteClient

	registry *handles.Registry

	subLLM      SubLLM
	callBudget  int
	callsUsed   int

	notes map[string]string

	verify bool
}

// New builds a tool surface bound to one loaded ontology and one run's
// result handle registry.
func New(ctx context.Context, lib graph.Library, h graph.Handle, meta *model.GraphMeta, remote graph.RemoteClient, subLLM SubLLM, callBudget int) *Surface {
	return &Surface{
		ctx:        ctx,
		meta:       meta,
		handle:     h,
		lib:        lib,
		remote:     remote,
		registry:   handles.New(),
		subLLM:     subLLM,
		callBudget: callBudget,
		notes:      map[string]string{},
		verify:     true,
	}
}

// SetVerification toggles the post-SPARQL verification injector (C4). On
// by default; the run() entry point's enable_verification option calls
// this to turn it off.
func (s *Surface) SetVerification(on bool) { s.verify = on }

// Registry exposes the run's result handle registry, e.g. for C4's
// verification injector which needs to read the handle a sparql_* call just
// produced.
func (s *Surface) Registry() *handles.Registry { return s.registry }

// Definition is one named, documented tool callable, ready for the code
// interpreter to bind into its execution namespace and for the iteration
// driver to render into prompt instructions.
type Definition struct {
	Name string
	Doc  string // first line must stay <=80 chars; driver renders this verbatim
	Fn   any    // a Go func value; the interpreter binds it directly
}

// Definitions returns the full bounded tool surface in the fixed order the
// driver renders them in prompt instructions.
func (s *Surface) Definitions() []Definition {
	return []Definition{
		{Name: "search_entity", Doc: "Find identifiers matching a label, exact then substring.", Fn: s.SearchEntity},
		{Name: "describe_entity", Doc: "Summarise one identifier: labels, comments, types, edges.", Fn: s.DescribeEntity},
		{Name: "probe_relationships", Doc: "List direct neighbours of an identifier, in and out.", Fn: s.ProbeRelationships},
		{Name: "class_hierarchy", Doc: "Return the subclass tree rooted at an identifier.", Fn: s.ClassHierarchy},
		{Name: "predicate_frequency", Doc: "Rank properties by approximate usage frequency.", Fn: s.PredicateFrequency},
		{Name: "sparql_local", Doc: "Run SPARQL against the loaded ontology; registers a handle.", Fn: s.SparqlLocal},
		{Name: "sparql_remote", Doc: "Run SPARQL against a remote HTTP endpoint; registers a handle.", Fn: s.SparqlRemote},
		{Name: "res_head", Doc: "Return the first n rows of a registered result handle.", Fn: s.ResHead},
		{Name: "res_sample", Doc: "Return n representative rows of a registered result handle.", Fn: s.ResSample},
		{Name: "res_where", Doc: "Filter a registered result handle's rows by column value.", Fn: s.ResWhere},
		{Name: "res_group", Doc: "Bucket a registered result handle's rows by column value.", Fn: s.ResGroup},
		{Name: "res_distinct", Doc: "List distinct values of a column in a registered handle.", Fn: s.ResDistinct},
		{Name: "llm_query", Doc: "Delegate one sub-question to the budgeted sub-LLM.", Fn: s.LlmQuery},
		{Name: "llm_query_batched", Doc: "Delegate several sub-questions in parallel, order preserved.", Fn: s.LlmQueryBatched},
		{Name: "write_note", Doc: "Save a string under a key in the per-run scratchpad.", Fn: s.WriteNote},
		{Name: "read_note", Doc: "Read a string previously saved under a key.", Fn: s.ReadNote},
		{Name: "list_notes", Doc: "List every key currently held in the scratchpad.", Fn: s.ListNotes},
	}
}
