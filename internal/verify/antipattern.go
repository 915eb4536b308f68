package verify

import "regexp"

// antiPattern is one structural anti-pattern: a regex the query text is
// tested against, and the warning detail shown when it matches.
type antiPattern struct {
	name   string
	re     *regexp.Regexp
	detail string
}

var antiPatterns = []antiPattern{
	{
		name:   "label-string-filter",
		re:     regexp.MustCompile(`(?i)FILTER\s*\(\s*(?:str|regex)\s*\(\s*\?\w*label`),
		detail: "filtering on a label string where a typed predicate may exist; prefer predicate_frequency/search_entity to find the typed form first",
	},
	{
		name:   "seealso-as-semantic-link",
		re:     regexp.MustCompile(`rdfs:seeAlso`),
		detail: "rdfs:seeAlso is an informational hint, not a semantic relation; do not treat it as equivalent to a declared object property",
	},
	{
		name:   "missing-intermediate-node",
		re:     regexp.MustCompile(`(?is)\?\w+\s+[a-zA-Z][\w-]*:\w+\s+\?\w+\s*\.\s*\?\w+\s+[a-zA-Z][\w-]*:\w+\s+".*?"`),
		detail: "multi-hop pattern binding a literal straight off a chained variable; check whether an intermediate annotation node was skipped",
	},
}

// checkAntiPatterns runs the structural anti-pattern library against the
// query text, returning one finding per match (bounded by the caller's
// block-length budget when rendered).
func checkAntiPatterns(query string) []Finding {
	var findings []Finding
	for _, p := range antiPatterns {
		if p.re.MatchString(query) {
			findings = append(findings, Finding{Rule: p.name, Severity: SeverityWarning, Detail: p.detail})
		}
	}
	return findings
}
