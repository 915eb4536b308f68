package tools

import (
	"strings"

	"graphrlm.dev/core/internal/model"
)

// resolveTerm normalises a user-supplied identifier against the ontology's
// namespace bindings: an absolute IRI (<...> or scheme:// form) passes
// through unchanged, a compact prefixed name (foo:Bar) is left as-is since
// the store already indexes compact form, and a bare local name is
// auto-prefixed with the ontology's default prefix.
func resolveTerm(meta *model.GraphMeta, term string) string {
	term = strings.TrimSpace(term)
	if strings.HasPrefix(term, "<") || strings.Contains(term, "://") {
		return term
	}
	if strings.Contains(term, ":") {
		return term
	}
	if meta.DefaultPrefix == "" {
		return term
	}
	return meta.DefaultPrefix + ":" + term
}
