package bank

import (
	"fmt"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// maxArtifactChars bounds the trajectory artifact handed to the Judge and
// Extract sub-LLM calls, keeping both prompts small regardless of run
// length.
const maxArtifactChars = 4_000

// BuildArtifact renders the bounded trajectory artifact Judge and Extract
// both consume: the first and last iteration, plus any iteration that
// executed SPARQL, per spec §4.6.
func BuildArtifact(traj model.Trajectory) string {
	entries := traj.Entries
	if len(entries) == 0 {
		return "(no iterations recorded)"
	}

	include := map[int]bool{0: true, len(entries) - 1: true}
	for i, e := range entries {
		if strings.Contains(e.Code, "sparql_local(") || strings.Contains(e.Code, "sparql_remote(") {
			include[i] = true
		}
	}

	var b strings.Builder
	for i, e := range entries {
		if !include[i] {
			continue
		}
		b.WriteString(fmt.Sprintf("Step %d [%s]\n", e.Step, e.ErrorClass))
		if e.Reasoning != "" {
			b.WriteString("think: " + e.Reasoning + "\n")
		}
		if e.Code != "" {
			b.WriteString("code: " + e.Code + "\n")
		}
		if e.Output != "" {
			b.WriteString("output: " + e.Output + "\n")
		}
		if e.Verification != "" {
			b.WriteString("verification: " + e.Verification + "\n")
		}
		b.WriteString("\n")
	}

	artifact := b.String()
	if len(artifact) > maxArtifactChars {
		artifact = artifact[:maxArtifactChars] + "\n[...truncated]"
	}
	return artifact
}
