package verify

import (
	"fmt"
	"regexp"

	"graphrlm.dev/core/internal/model"
)

// triplePatternRe matches a simple "?s predicate ?o" basic-graph-pattern
// clause, the only shape checkDomainRange inspects.
var triplePatternRe = regexp.MustCompile(`(\?\w+|\S+)\s+([a-zA-Z][\w-]*:[a-zA-Z][\w-]*)\s+(\?\w+|\S+)\s*\.`)

// checkDomainRange flags triple patterns whose bound subject or object is
// typed incompatibly with a known property's declared domain or range.
// Only flags when BOTH the property and the bound term's type are known;
// absence of information is never treated as a violation.
func checkDomainRange(query string, meta *model.GraphMeta) Finding {
	var violations []string
	for _, m := range triplePatternRe.FindAllStringSubmatch(query, -1) {
		subject, predicate, object := m[1], m[2], m[3]

		if domains, ok := meta.Domains[predicate]; ok && len(domains) > 0 {
			if t, known := boundType(meta, subject); known && !containsType(domains, t) {
				violations = append(violations, fmt.Sprintf("%s has type %s incompatible with %s's domain", subject, t, predicate))
			}
		}
		if ranges, ok := meta.Ranges[predicate]; ok && len(ranges) > 0 {
			if t, known := boundType(meta, object); known && !containsType(ranges, t) {
				violations = append(violations, fmt.Sprintf("%s has type %s incompatible with %s's range", object, t, predicate))
			}
		}
	}

	if len(violations) > 0 {
		return Finding{Rule: "domain-range", Severity: SeverityWarning, Detail: violations[0]}
	}
	return Finding{Rule: "domain-range", Severity: SeverityOK, Detail: "no domain/range incompatibilities detected"}
}

// boundType returns a type for a concrete (non-variable) term only when the
// term is itself a known class, in which case the class is its own type;
// graph-meta alone does not carry per-instance types, and the subclass
// relation is not consulted.
func boundType(meta *model.GraphMeta, term string) (string, bool) {
	for _, c := range meta.Classes {
		if c == term {
			return term, true
		}
	}
	return "", false
}

func containsType(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
