package tools

import (
	"sort"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// SearchEntity matches identifiers against a term: exact-label matches
// first, then case-insensitive substring matches over the reverse label
// index. Returns an error dict with kind "not-found" if nothing matches.
func (s *Surface) SearchEntity(term string, limit int) any {
	if limit <= 0 {
		limit = 10
	}
	term = strings.TrimSpace(term)
	lower := strings.ToLower(term)

	type match struct {
		identifier string
		kind       string
	}
	var exact, substr []match

	if ids, ok := s.meta.ReverseLabels[lower]; ok {
		for _, id := range ids {
			exact = append(exact, match{identifier: id, kind: "exact-label"})
		}
	}
	for label, ids := range s.meta.ReverseLabels {
		if label == lower {
			continue
		}
		if strings.Contains(label, lower) {
			for _, id := range ids {
				substr = append(substr, match{identifier: id, kind: "substring"})
			}
		}
	}
	sort.Slice(substr, func(i, j int) bool { return substr[i].identifier < substr[j].identifier })

	all := append(exact, substr...)
	if len(all) == 0 {
		return errorDict("not-found", "no entity matches term "+term, "try a shorter or differently-cased term")
	}
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]map[string]any, 0, len(all))
	for _, m := range all {
		out = append(out, map[string]any{
			"identifier": m.identifier,
			"label":      s.meta.Labels[m.identifier],
			"match_kind": m.kind,
		})
	}
	return out
}

// DescribeEntity summarises one identifier's labels, comments, rdf:type
// values, a capped sample of outgoing edges, and an incoming-edge count.
func (s *Surface) DescribeEntity(identifier string, limit int) any {
	if limit <= 0 {
		limit = 20
	}
	id := resolveTerm(s.meta, identifier)

	outEdges, inCount := s.neighbourEdges(id)
	overflow := 0
	if len(outEdges) > limit {
		overflow = len(outEdges) - limit
		outEdges = outEdges[:limit]
	}

	samples := make([]map[string]any, 0, len(outEdges))
	for _, e := range outEdges {
		samples = append(samples, map[string]any{
			"predicate":     e.predicate,
			"value_sample":  e.value,
		})
	}

	var types []string
	for _, c := range s.meta.Classes {
		if c == id {
			types = append(types, "owl:Class")
		}
	}

	result := map[string]any{
		"identifier":      id,
		"labels":          labelsFor(s.meta, id),
		"comments":        commentsFor(s.meta, id),
		"types":           types,
		"out_edges":       samples,
		"in_edges_count":  inCount,
	}
	if overflow > 0 {
		result["out_edges_overflow"] = overflow
	}
	return result
}

type neighbourEdge struct {
	predicate string
	value     string
}

// neighbourEdges reports the domain/range-derived edges known to
// graph-meta: one outgoing edge per property whose domain includes id, and
// the count of properties whose range includes id as the incoming count.
// Instance-level triples are not enumerated.
func (s *Surface) neighbourEdges(id string) ([]neighbourEdge, int) {
	var out []neighbourEdge
	for prop, domains := range s.meta.Domains {
		for _, d := range domains {
			if d == id {
				out = append(out, neighbourEdge{predicate: prop, value: "<range: " + strings.Join(s.meta.Ranges[prop], ", ") + ">"})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].predicate < out[j].predicate })
	in := 0
	for _, ranges := range s.meta.Ranges {
		for _, r := range ranges {
			if r == id {
				in++
			}
		}
	}
	return out, in
}

func labelsFor(meta *model.GraphMeta, id string) []string {
	if l, ok := meta.Labels[id]; ok {
		return []string{l}
	}
	return nil
}

func commentsFor(meta *model.GraphMeta, id string) []string {
	if c, ok := meta.Comments[id]; ok {
		return []string{c}
	}
	return nil
}

// ProbeRelationships lists the direct neighbours of identifier in both
// directions, using the domain/range projection as a proxy for
// instance-level edges.
func (s *Surface) ProbeRelationships(identifier string, limit int) any {
	if limit <= 0 {
		limit = 15
	}
	id := resolveTerm(s.meta, identifier)

	var out []map[string]any
	for prop, domains := range s.meta.Domains {
		for _, d := range domains {
			if d == id {
				for _, r := range s.meta.Ranges[prop] {
					out = append(out, map[string]any{
						"direction":        "out",
						"predicate":        prop,
						"neighbour":        r,
						"neighbour_label":  s.meta.Labels[r],
					})
				}
			}
		}
	}
	for prop, ranges := range s.meta.Ranges {
		for _, r := range ranges {
			if r == id {
				for _, d := range s.meta.Domains[prop] {
					out = append(out, map[string]any{
						"direction":        "in",
						"predicate":        prop,
						"neighbour":        d,
						"neighbour_label":  s.meta.Labels[d],
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["predicate"].(string) < out[j]["predicate"].(string)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) == 0 {
		return errorDict("not-found", "no relationships found for "+id, "check the identifier with describe_entity first")
	}
	return out
}

// ClassHierarchy returns a nested tree of subclasses rooted at identifier,
// breaking cycles by identity set.
func (s *Surface) ClassHierarchy(identifier string, depth int) any {
	if depth <= 0 {
		depth = 2
	}
	id := resolveTerm(s.meta, identifier)
	seen := map[string]bool{id: true}
	return s.buildHierarchyNode(id, depth, seen)
}

func (s *Surface) buildHierarchyNode(id string, depth int, seen map[string]bool) map[string]any {
	node := map[string]any{
		"identifier": id,
		"label":      s.meta.Labels[id],
	}
	if depth <= 0 {
		return node
	}

	var children []map[string]any
	subs := append([]string(nil), s.meta.Subclasses[id]...)
	sort.Strings(subs)
	for _, child := range subs {
		if seen[child] {
			continue
		}
		seen[child] = true
		children = append(children, s.buildHierarchyNode(child, depth-1, seen))
	}
	if children != nil {
		node["children"] = children
	}
	return node
}

// PredicateFrequency ranks known properties by how often they appear as a
// property domain/range binding, as a proxy for triple frequency over
// graph-meta alone.
func (s *Surface) PredicateFrequency(top int) any {
	if top <= 0 {
		top = 20
	}

	type freq struct {
		predicate  string
		count      int
		domainHint string
		rangeHint  string
	}
	seen := map[string]*freq{}
	order := []string{}
	for prop := range s.meta.Domains {
		if _, ok := seen[prop]; !ok {
			seen[prop] = &freq{predicate: prop}
			order = append(order, prop)
		}
		seen[prop].count += len(s.meta.Domains[prop])
		seen[prop].domainHint = strings.Join(s.meta.Domains[prop], ",")
	}
	for prop := range s.meta.Ranges {
		if _, ok := seen[prop]; !ok {
			seen[prop] = &freq{predicate: prop}
			order = append(order, prop)
		}
		seen[prop].count += len(s.meta.Ranges[prop])
		seen[prop].rangeHint = strings.Join(s.meta.Ranges[prop], ",")
	}

	entries := make([]*freq, 0, len(order))
	for _, p := range order {
		entries = append(entries, seen[p])
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].predicate < entries[j].predicate
	})
	if len(entries) > top {
		entries = entries[:top]
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"predicate":   e.predicate,
			"count":       e.count,
			"domain_hint": e.domainHint,
			"range_hint":  e.rangeHint,
		})
	}
	return out
}
