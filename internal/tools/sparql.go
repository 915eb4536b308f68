package tools

import (
	"errors"
	"strings"
	"time"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/handles"
	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/verify"
)

const defaultResultLimit = 100

// SparqlLocal executes query against the loaded ontology and registers the
// result under name in the result handle registry. A SELECT lacking an
// explicit LIMIT has one injected, capped at limit.
func (s *Surface) SparqlLocal(query, name string, limit int) any {
	if limit <= 0 {
		limit = defaultResultLimit
	}
	result, err := s.lib.Query(s.ctx, s.handle, query, limit)
	if err != nil {
		return errorDict("query-failed", err.Error(), "check prefix bindings and triple-pattern syntax")
	}

	h := toResultHandle(name, query, model.ProvenanceLocal, result)
	s.registry.Put(name, h)
	return s.summaryWithVerification(query, h)
}

// SparqlRemote executes query against an HTTP SPARQL endpoint and registers
// the result under name. Failures are surfaced as recoverable error dicts
// distinguishing unreachable, timeout, and generic endpoint errors.
func (s *Surface) SparqlRemote(query, name, endpoint string, limit, timeoutS int) any {
	if limit <= 0 {
		limit = defaultResultLimit
	}
	if timeoutS <= 0 {
		timeoutS = 30
	}
	if s.remote == nil {
		return errorDict("endpoint-unreachable", "no remote SPARQL client configured", "use sparql_local for the loaded ontology")
	}

	result, err := s.remote.Query(s.ctx, endpoint, query, time.Duration(timeoutS)*time.Second)
	if err != nil {
		kind := "endpoint-error"
		switch {
		case isTimeoutErr(err):
			kind = "endpoint-timeout"
		case isUnreachableErr(err):
			kind = "endpoint-unreachable"
		}
		return errorDict(kind, err.Error(), "retry with a longer timeout or a narrower query")
	}

	h := toResultHandle(name, query, model.ProvenanceRemote, result)
	s.registry.Put(name, h)
	return s.summaryWithVerification(query, h)
}

// summaryWithVerification is the one exit point every sparql_* tool returns
// through: it attaches C4's verification-feedback block to the handle
// summary the REPL sees, per spec §4.4 ("appends a formatted feedback
// block to the tool output").
func (s *Surface) summaryWithVerification(query string, h model.ResultHandle) map[string]any {
	summary := handleSummary(h)
	if s.verify {
		summary["verification"] = verify.Run(query, h, s.meta)
	}
	return summary
}

// LastVerification re-runs C4 over a previously registered handle, letting
// the driver capture the feedback block for the trajectory's iteration
// entry independent of the summary map shape.
func (s *Surface) LastVerification(name string) (string, bool) {
	h, ok := s.registry.Get(name)
	if !ok {
		return "", false
	}
	return verify.Run(h.Query, h, s.meta), true
}

func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}

func isUnreachableErr(err error) bool {
	return strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "no such host")
}

func toResultHandle(name, query string, provenance model.ResultProvenance, result graph.QueryResult) model.ResultHandle {
	h := model.ResultHandle{
		Name:       name,
		Kind:       result.Kind,
		Provenance: provenance,
		Query:      query,
	}
	switch h.Kind {
	case model.ResultKindRows:
		rows := make([]map[string]string, 0, len(result.Rows))
		for _, b := range result.Rows {
			rows = append(rows, map[string]string(b))
		}
		h.Rows = rows
		h.RowCount = len(rows)
		h.Schema = model.Schema{Columns: result.Columns}
	case model.ResultKindGraph:
		h.GraphSize = result.GraphSize
	case model.ResultKindScalar:
		h.Scalar = result.Scalar
	}
	return h
}

func handleSummary(h model.ResultHandle) map[string]any {
	summary := map[string]any{
		"name": h.Name,
		"kind": string(h.Kind),
	}
	switch h.Kind {
	case model.ResultKindRows:
		summary["row_count"] = h.RowCount
		summary["columns"] = h.Schema.Columns
		n := h.RowCount
		if n > 5 {
			n = 5
		}
		summary["preview"] = h.Rows[:n]
	case model.ResultKindGraph:
		summary["graph_size"] = h.GraphSize
	case model.ResultKindScalar:
		summary["scalar"] = h.Scalar
	}
	return summary
}

// ResHead returns the first n rows of a registered result handle.
func (s *Surface) ResHead(name string, n int) any {
	rows, err := s.registry.Head(name, n)
	if err != nil {
		return noSuchHandleError(err)
	}
	return rows
}

// ResSample returns n representative rows spread across a registered
// result handle.
func (s *Surface) ResSample(name string, n int) any {
	rows, err := s.registry.Sample(name, n)
	if err != nil {
		return noSuchHandleError(err)
	}
	return rows
}

// ResWhere filters a registered handle's rows to those whose column value
// contains predicateOverValue as a substring.
func (s *Surface) ResWhere(name, column, predicateOverValue string) any {
	rows, err := s.registry.Where(name, column, handles.ContainsPredicate(predicateOverValue))
	if err != nil {
		return noSuchHandleError(err)
	}
	return rows
}

// ResGroup buckets a registered handle's rows by column value, ordered by
// descending count.
func (s *Surface) ResGroup(name, byColumn string) any {
	groups, err := s.registry.Group(name, byColumn)
	if err != nil {
		return noSuchHandleError(err)
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{"value": g.Value, "count": g.Count})
	}
	return out
}

// ResDistinct lists the distinct values of column in a registered handle.
func (s *Surface) ResDistinct(name, column string) any {
	values, err := s.registry.Distinct(name, column)
	if err != nil {
		return noSuchHandleError(err)
	}
	return values
}

func noSuchHandleError(err error) map[string]any {
	return errorDict("not-found", err.Error(), "call sparql_local or sparql_remote first to register a handle")
}
