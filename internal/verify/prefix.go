package verify

import (
	"fmt"
	"regexp"
	"strings"

	"graphrlm.dev/core/internal/model"
)

var prefixDeclRe = regexp.MustCompile(`(?i)PREFIX\s+(\w*):\s*<[^>]*>`)
var prefixedTokenRe = regexp.MustCompile(`\b([a-zA-Z][\w-]*):[a-zA-Z][\w-]*\b`)
var reservedTokens = map[string]bool{"http": true, "https": true}

// checkPrefixResolution flags every prefixed token in query whose prefix
// resolves against neither the ontology's known bindings nor the query's
// own PREFIX declarations.
func checkPrefixResolution(query string, meta *model.GraphMeta) Finding {
	declared := map[string]bool{}
	for _, m := range prefixDeclRe.FindAllStringSubmatch(query, -1) {
		declared[m[1]] = true
	}

	var unresolved []string
	seen := map[string]bool{}
	for _, m := range prefixedTokenRe.FindAllStringSubmatch(query, -1) {
		prefix := m[1]
		if reservedTokens[prefix] || seen[prefix] {
			continue
		}
		seen[prefix] = true
		if declared[prefix] {
			continue
		}
		if _, ok := meta.Prefixes[prefix]; ok {
			continue
		}
		unresolved = append(unresolved, prefix)
	}

	if len(unresolved) > 0 {
		return Finding{
			Rule:     "prefix-resolution",
			Severity: SeverityError,
			Detail:   fmt.Sprintf("unresolved prefix(es): %s", strings.Join(unresolved, ", ")),
		}
	}
	return Finding{Rule: "prefix-resolution", Severity: SeverityOK, Detail: "all prefixes resolve"}
}
