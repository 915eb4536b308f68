package verify

import (
	"regexp"
	"strings"
)

var selectFormRe = regexp.MustCompile(`(?i)^\s*SELECT\b`)
var limitClauseRe = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)

// checkLimitPresence flags SELECT queries with no LIMIT clause as a
// warning, not an error, since the local tool path may already have
// injected one before execution.
func checkLimitPresence(query string) Finding {
	if !selectFormRe.MatchString(strings.TrimSpace(query)) {
		return Finding{Rule: "limit-presence", Severity: SeverityOK, Detail: "not a SELECT query"}
	}
	if limitClauseRe.MatchString(query) {
		return Finding{Rule: "limit-presence", Severity: SeverityOK, Detail: "LIMIT present"}
	}
	return Finding{Rule: "limit-presence", Severity: SeverityWarning, Detail: "no explicit LIMIT in query text"}
}
