package rlm

import (
	"fmt"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// staticInstructions renders the system message once per run: the REPL
// contract, the bound tool docstrings, and the output schema the model
// must eventually satisfy via SUBMIT/FINAL/FINAL_VAR.
func (d *Driver) staticInstructions() string {
	var b strings.Builder
	b.WriteString("You solve the task by writing JavaScript that runs in a persistent REPL.\n")
	b.WriteString("Each turn, think briefly, then emit exactly one fenced code block. Only the\n")
	b.WriteString("first code block in your response runs; anything after it is ignored.\n\n")
	b.WriteString("Call one of SUBMIT(fields), FINAL(text), or FINAL_VAR(name) to finish:\n")
	b.WriteString("  SUBMIT({...})   terminates with the given fields as the final payload.\n")
	b.WriteString("  FINAL(text)     terminates with {text: <text>} as the final payload.\n")
	b.WriteString("  FINAL_VAR(name) terminates using the value already bound to a variable.\n")
	b.WriteString("Until you call one of these, each execution's stdout/stderr is returned to\n")
	b.WriteString("you as the step's result and the REPL keeps running with state intact.\n\n")

	b.WriteString("Available tools:\n")
	for _, def := range d.surface.Definitions() {
		b.WriteString(fmt.Sprintf("  %s — %s\n", def.Name, def.Doc))
	}

	b.WriteString("\nThe final payload must carry these fields:\n")
	for _, f := range d.schema {
		req := "optional"
		if f.Required {
			req = "required"
		}
		b.WriteString(fmt.Sprintf("  %s (%s, %s)\n", f.Name, f.Kind, req))
	}
	return b.String()
}

// renderStep renders the per-step user message: the input fields (once, at
// the top) plus the trajectory so far, compressed past compressAfter
// entries per spec §4.5.
func (d *Driver) renderStep(in Input, traj model.Trajectory) string {
	var b strings.Builder
	b.WriteString("Query: ")
	b.WriteString(in.Query)
	b.WriteString("\n")
	if in.Context != "" {
		b.WriteString("Context:\n")
		b.WriteString(in.Context)
		b.WriteString("\n")
	}
	if in.SenseCard != "" {
		b.WriteString("Sense card:\n")
		b.WriteString(in.SenseCard)
		b.WriteString("\n")
	}

	if len(traj.Entries) == 0 {
		b.WriteString("\nWrite your first step.\n")
		return b.String()
	}

	b.WriteString("\nTrajectory so far:\n")
	b.WriteString(renderTrajectory(traj.Entries))
	b.WriteString("\nWrite your next step.\n")
	return b.String()
}

// renderTrajectory renders the most recent compressAfter entries verbatim
// as THINK/CODE/OUTPUT blocks; anything older collapses to a count, per
// spec §4.5's compression requirement.
func renderTrajectory(entries []model.IterationEntry) string {
	var b strings.Builder

	cut := 0
	if len(entries) > compressAfter {
		cut = len(entries) - compressAfter
		b.WriteString(fmt.Sprintf("  (%d earlier step(s) omitted)\n", cut))
	}

	for _, e := range entries[cut:] {
		b.WriteString(fmt.Sprintf("Step %d\n", e.Step))
		if e.Reasoning != "" {
			b.WriteString("THINK: ")
			b.WriteString(e.Reasoning)
			b.WriteString("\n")
		}
		if e.Code != "" {
			b.WriteString("CODE:\n```js\n")
			b.WriteString(e.Code)
			b.WriteString("\n```\n")
		}
		b.WriteString("OUTPUT: ")
		if e.Output != "" {
			b.WriteString(e.Output)
		} else {
			b.WriteString("(no output)")
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
