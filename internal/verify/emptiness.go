package verify

import (
	"strings"

	"graphrlm.dev/core/internal/model"
)

// checkEmptiness emits one hypothesis line when handle has zero rows: an
// overly restrictive filter, a wrong class reference, or a missing
// OPTIONAL around a sparse property.
func checkEmptiness(query string, h model.ResultHandle) *Finding {
	empty := false
	switch h.Kind {
	case model.ResultKindRows:
		empty = h.RowCount == 0
	case model.ResultKindGraph:
		empty = h.GraphSize == 0
	case model.ResultKindScalar:
		empty = !h.Scalar
	}
	if !empty {
		return nil
	}

	hypothesis := "filter may be overly restrictive, or the bound class/value does not occur in this ontology"
	switch {
	case strings.Contains(query, "FILTER"):
		hypothesis = "a FILTER clause may be excluding all matching rows; try relaxing or removing it"
	case strings.Contains(query, "OPTIONAL"):
		hypothesis = "check whether the OPTIONAL block's predicate is sparsely populated"
	case h.Kind == model.ResultKindScalar:
		hypothesis = "the ASK pattern did not match any triple; verify the predicate and bound values with describe_entity"
	}

	return &Finding{Rule: "emptiness", Severity: SeverityWarning, Detail: hypothesis}
}
