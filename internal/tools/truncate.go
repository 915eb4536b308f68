package tools

import "fmt"

// previewBudget is the default output budget most tools truncate to.
const previewBudget = 1000

// truncate caps s at limit characters, appending an explicit marker noting
// how many characters were dropped.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	dropped := len(s) - limit
	return fmt.Sprintf("%s[...truncated %d chars]", s[:limit], dropped)
}

// errorDict is the uniform failure shape every tool returns instead of
// raising: the REPL must never be torn down by a recoverable tool failure.
func errorDict(kind, message, hint string) map[string]any {
	return map[string]any{
		"error":   kind,
		"message": message,
		"hint":    hint,
	}
}
