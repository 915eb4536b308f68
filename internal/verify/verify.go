package verify

import (
	"fmt"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// MaxBlockChars bounds the rendered feedback block.
const MaxBlockChars = 1000

// Run executes every check against a query, its resulting handle, and the
// ontology's graph-meta, rendering the findings into a single bounded
// block of bullet lines the REPL sees appended to the tool's output.
func Run(query string, h model.ResultHandle, meta *model.GraphMeta) string {
	var findings []Finding
	findings = append(findings, checkPrefixResolution(query, meta))
	findings = append(findings, checkDomainRange(query, meta))
	findings = append(findings, checkLimitPresence(query))
	findings = append(findings, checkAntiPatterns(query)...)
	if f := checkEmptiness(query, h); f != nil {
		findings = append(findings, *f)
	}

	return render(findings)
}

func render(findings []Finding) string {
	var sb strings.Builder
	for _, f := range findings {
		sb.WriteString(fmt.Sprintf("%s %s: %s\n", f.Severity.marker(), f.Rule, f.Detail))
	}
	block := strings.TrimRight(sb.String(), "\n")
	if len(block) <= MaxBlockChars {
		return block
	}
	return block[:MaxBlockChars] + "\n[...truncated]"
}
