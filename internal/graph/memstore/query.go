package memstore

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/model"
)

var (
	formRe   = regexp.MustCompile(`(?is)^\s*(SELECT|ASK|CONSTRUCT|DESCRIBE)\b`)
	selectRe = regexp.MustCompile(`(?is)SELECT\s+(.*?)\s+WHERE\s*\{(.*)\}\s*(LIMIT\s+(\d+))?\s*$`)
	limitRe  = regexp.MustCompile(`(?is)LIMIT\s+(\d+)`)
	varTokRe = regexp.MustCompile(`\?\w+`)
)

// Query executes the basic-graph-pattern subset of SPARQL this reference
// implementation supports: SELECT ?a ?b WHERE { pattern . pattern . } with
// an optional trailing LIMIT, and ASK { pattern }. CONSTRUCT/DESCRIBE
// return a graph-sized result counting matched triples.
func (l *Library) Query(_ context.Context, h graph.Handle, query string, limit int) (graph.QueryResult, error) {
	store, ok := l.lookup(h.ID())
	if !ok {
		return graph.QueryResult{}, fmt.Errorf("%w: unknown handle %s", graph.ErrNotFound, h.ID())
	}

	form := strings.ToUpper(strings.TrimSpace(formRe.FindString(query)))
	switch {
	case strings.HasPrefix(form, "ASK"):
		return l.execAsk(store, query)
	case strings.HasPrefix(form, "SELECT"):
		return l.execSelect(store, query, limit)
	default:
		// CONSTRUCT / DESCRIBE: report the matched triple count as a graph.
		rows, _, err := evalPatterns(store, extractBraces(query))
		if err != nil {
			return graph.QueryResult{}, err
		}
		return graph.QueryResult{Kind: model.ResultKindGraph, GraphSize: len(rows)}, nil
	}
}

func (l *Library) execAsk(store *Store, query string) (graph.QueryResult, error) {
	rows, _, err := evalPatterns(store, extractBraces(query))
	if err != nil {
		return graph.QueryResult{}, err
	}
	return graph.QueryResult{Kind: model.ResultKindScalar, Scalar: len(rows) > 0}, nil
}

func (l *Library) execSelect(store *Store, query string, defaultLimit int) (graph.QueryResult, error) {
	m := selectRe.FindStringSubmatch(query)
	if m == nil {
		return graph.QueryResult{}, fmt.Errorf("unsupported SELECT form")
	}
	varsPart, body := m[1], m[2]

	rows, _, err := evalPatterns(store, body)
	if err != nil {
		return graph.QueryResult{}, err
	}

	lim := defaultLimit
	if lm := limitRe.FindStringSubmatch(query); lm != nil {
		if n, convErr := strconv.Atoi(lm[1]); convErr == nil {
			lim = n
		}
	}
	if lim > 0 && len(rows) > lim {
		rows = rows[:lim]
	}

	var columns []string
	if strings.TrimSpace(varsPart) == "*" {
		columns = inferColumns(rows)
	} else {
		for _, v := range varTokRe.FindAllString(varsPart, -1) {
			columns = append(columns, strings.TrimPrefix(v, "?"))
		}
	}

	projected := make([]graph.Binding, 0, len(rows))
	for _, r := range rows {
		b := graph.Binding{}
		for _, c := range columns {
			b[c] = r[c]
		}
		projected = append(projected, b)
	}

	return graph.QueryResult{Kind: model.ResultKindRows, Rows: projected, Columns: columns}, nil
}

func extractBraces(query string) string {
	start := strings.Index(query, "{")
	end := strings.LastIndex(query, "}")
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return query[start+1 : end]
}

func inferColumns(rows []graph.Binding) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// pattern is one parsed "subject predicate object" triple pattern; any
// term starting with '?' is a variable.
type pattern struct {
	S, P, O string
}

func parsePatterns(body string) []pattern {
	var out []pattern
	for _, stmt := range strings.Split(body, ".") {
		fields := strings.Fields(strings.TrimSpace(stmt))
		if len(fields) < 3 {
			continue
		}
		out = append(out, pattern{S: fields[0], P: fields[1], O: strings.Join(fields[2:], " ")})
	}
	return out
}

// evalPatterns runs a simple nested-loop join over the store's triples for
// every parsed pattern, returning bound-variable rows.
func evalPatterns(store *Store, body string) ([]graph.Binding, []string, error) {
	patterns := parsePatterns(body)
	if len(patterns) == 0 {
		return nil, nil, nil
	}

	bindings := []graph.Binding{{}}
	for _, p := range patterns {
		var next []graph.Binding
		for _, b := range bindings {
			for _, t := range store.triples {
				nb, ok := matchPattern(p, t, b)
				if ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}
	return bindings, nil, nil
}

func matchPattern(p pattern, t Triple, b graph.Binding) (graph.Binding, bool) {
	nb := graph.Binding{}
	for k, v := range b {
		nb[k] = v
	}
	if !bindTerm(p.S, t.Subject, nb) {
		return nil, false
	}
	if !bindTerm(p.P, t.Predicate, nb) {
		return nil, false
	}
	if !bindTerm(p.O, t.Object, nb) {
		return nil, false
	}
	return nb, true
}

func bindTerm(term, value string, b graph.Binding) bool {
	if strings.HasPrefix(term, "?") {
		name := strings.TrimPrefix(term, "?")
		if existing, ok := b[name]; ok {
			return existing == value
		}
		b[name] = value
		return true
	}
	return term == value
}
