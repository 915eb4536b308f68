// Package rlm implements the RLM Iteration Driver (C5): render a prompt,
// request one root-model completion, execute the emitted code through the
// interpreter (C3), classify the outcome, and repeat until the model
// terminates or the budget is exhausted.
package rlm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/interp"
	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/tools"
)

// Defaults per spec §2 ("Iteration budget 15–25 steps, sub-LLM call budget
// 30–50") and §6's run() signature.
const (
	DefaultMaxIterations = 15
	DefaultMaxLLMCalls   = 50

	modelCallRetries = 3
	modelCallBackoff = 500 * time.Millisecond

	// compressAfter bounds how many of the most recent trajectory entries
	// are rendered verbatim; older entries collapse to a one-line count
	// per spec §4.5 ("older steps compressed past a configured threshold").
	compressAfter = 6
)

// OutputField is one required or optional terminal field the driver
// validates a TerminalOutcome's payload against.
type OutputField struct {
	Name     string
	Required bool
	Kind     string // free-form hint rendered into instructions, e.g. "text", "mapping"
}

// OutputSchema enumerates the terminal fields per spec §4.5.
type OutputSchema []OutputField

// Validate reports the first missing required field, if any.
func (s OutputSchema) Validate(payload map[string]any) error {
	for _, f := range s {
		if !f.Required {
			continue
		}
		v, ok := payload[f.Name]
		if !ok || v == nil {
			return fmt.Errorf("missing required field %q", f.Name)
		}
		if s, ok := v.(string); ok && s == "" {
			return fmt.Errorf("missing required field %q", f.Name)
		}
	}
	return nil
}

// Input carries the typed input fields the driver renders into the root
// prompt and the JS namespace on every step.
type Input struct {
	Query     string
	Context   string
	SenseCard string // empty when none
}

// Prediction is C5's output: the validated terminal fields, the full
// trajectory, and convergence status.
type Prediction struct {
	Fields     map[string]any
	Trajectory model.Trajectory
	Converged  bool
}

// Driver is the RLM iteration driver for one run. Not safe for concurrent
// use — one Driver (and its Interp) per run, per spec §4.3/§5.
type Driver struct {
	root          llm.AgentClient
	surface       *tools.Surface
	interp        *interp.Interp
	maxIterations int
	schema        OutputSchema
	callBudget    CallBudget // optional; nil means trust maxIterations alone
}

// New builds a driver. surface and it must already be wired to the same
// run's result-handle registry; New calls it.Start with surface's tool
// definitions.
func New(root llm.AgentClient, surface *tools.Surface, it *interp.Interp, maxIterations int, schema OutputSchema) (*Driver, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if err := it.Start(surface.Definitions()); err != nil {
		return nil, fmt.Errorf("driver-crashed: starting interpreter: %w", err)
	}
	return &Driver{
		root:          root,
		surface:       surface,
		interp:        it,
		maxIterations: maxIterations,
		schema:        schema,
	}, nil
}

// WithCallBudget attaches a shared call budget, charged once per root-model
// step, for deployments
// where more than one process can drive the same run id. Optional.
func (d *Driver) WithCallBudget(b CallBudget) *Driver {
	d.callBudget = b
	return d
}

// Run executes the iteration loop to completion, extract-fallback, or a
// fatal driver error.
func (d *Driver) Run(ctx context.Context, runID, trajectoryID string, in Input) (Prediction, error) {
	traj := model.Trajectory{
		RunID:        runID,
		TrajectoryID: trajectoryID,
		Query:        in.Query,
		Context:      in.Context,
		CreatedAt:    time.Now(),
	}

	messages := []llm.Message{
		{Role: "system", Content: d.staticInstructions()},
	}

	emptyStepsInRow := 0

	for step := 1; step <= d.maxIterations; step++ {
		if d.callBudget != nil {
			allowed, err := d.callBudget.Reserve(ctx, runID)
			if err != nil {
				slog.WarnContext(ctx, "rlm driver: shared call budget check failed, proceeding on local budget alone",
					"run_id", runID, "error", err)
			} else if !allowed {
				slog.WarnContext(ctx, "rlm driver: shared call budget exhausted, invoking extract fallback",
					"run_id", runID, "trajectory_id", trajectoryID, "step", step)
				return d.extractFallback(ctx, runID, trajectoryID, messages, traj)
			}
		}

		prompt := d.renderStep(in, traj)
		messages = append(messages, llm.Message{Role: "user", Content: prompt})

		resp, err := d.completeWithRetry(ctx, messages)
		if err != nil {
			traj.IterationCount = len(traj.Entries)
			return Prediction{Trajectory: traj}, fmt.Errorf("driver-crashed: root model call failed at step %d: %w", step, err)
		}
		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})

		reasoning, code, hasCode := extractCode(resp.Content)

		if !hasCode {
			emptyStepsInRow++
			traj.Entries = append(traj.Entries, model.IterationEntry{
				Step: step, Reasoning: reasoning, Timestamp: time.Now(), ErrorClass: model.ErrorClassNone,
			})
			if emptyStepsInRow >= 2 {
				slog.WarnContext(ctx, "rlm driver: two empty steps in a row, invoking extract fallback",
					"run_id", runID, "trajectory_id", trajectoryID, "step", step)
				return d.extractFallback(ctx, runID, trajectoryID, messages, traj)
			}
			continue
		}
		emptyStepsInRow = 0

		outcome, execErr := d.interp.Execute(code, map[string]any{
			"query": in.Query, "context": in.Context, "sense_card": in.SenseCard,
		})
		if execErr != nil {
			traj.IterationCount = len(traj.Entries)
			return Prediction{Trajectory: traj}, execErr
		}

		switch outcome.Kind {
		case interp.KindTerminal:
			if valErr := d.schema.Validate(outcome.Payload); valErr != nil {
				traj.Entries = append(traj.Entries, model.IterationEntry{
					Step: step, Reasoning: reasoning, Code: code, Timestamp: time.Now(),
					ErrorClass: model.ErrorClassRecoverable, Output: valErr.Error(),
				})
				messages = append(messages, llm.Message{Role: "user", Content: "SUBMIT validation failed: " + valErr.Error()})
				continue
			}
			traj.Entries = append(traj.Entries, model.IterationEntry{
				Step: step, Reasoning: reasoning, Code: code, Timestamp: time.Now(), ErrorClass: model.ErrorClassNone,
			})
			traj.FinalOutput = outcome.Payload
			traj.Converged = true
			traj.IterationCount = len(traj.Entries)
			return Prediction{Fields: outcome.Payload, Trajectory: traj, Converged: true}, nil

		case interp.KindText:
			if h, ok := d.surface.LastVerification(lastWrittenHandle(code)); ok {
				traj.Entries = append(traj.Entries, model.IterationEntry{
					Step: step, Reasoning: reasoning, Code: code, Output: outcome.Output, Timestamp: time.Now(),
					ErrorClass: model.ErrorClassNone, Verification: h,
				})
			} else {
				traj.Entries = append(traj.Entries, model.IterationEntry{
					Step: step, Reasoning: reasoning, Code: code, Output: outcome.Output, Timestamp: time.Now(),
					ErrorClass: model.ErrorClassNone,
				})
			}
			messages = append(messages, llm.Message{Role: "user", Content: buildResultPrompt(outcome.Output)})

		case interp.KindRecoverableError:
			traj.Entries = append(traj.Entries, model.IterationEntry{
				Step: step, Reasoning: reasoning, Code: code, Timestamp: time.Now(),
				ErrorClass: model.ErrorClassRecoverable, Output: outcome.Message,
			})
			messages = append(messages, llm.Message{Role: "user", Content: buildResultPrompt(
				fmt.Sprintf("[%s] %s", outcome.ErrorClass, outcome.Message))})
		}
	}

	slog.InfoContext(ctx, "rlm driver: iteration budget exhausted, invoking extract fallback",
		"run_id", runID, "trajectory_id", trajectoryID, "max_iterations", d.maxIterations)
	return d.extractFallback(ctx, runID, trajectoryID, messages, traj)
}

// completeWithRetry retries transient root-model failures up to
// modelCallRetries times with backoff, per spec §4.5's failure semantics.
func (d *Driver) completeWithRetry(ctx context.Context, messages []llm.Message) (*llm.AgentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= modelCallRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(modelCallBackoff * time.Duration(attempt)):
			}
		}
		resp, err := d.root.ChatWithTools(ctx, llm.AgentRequest{Messages: messages})
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// lastWrittenHandle best-effort extracts the handle name a sparql_local/
// sparql_remote call in this step's code wrote to, so the trajectory entry
// can carry the verification block the tool already computed.
func lastWrittenHandle(code string) string {
	for _, marker := range []string{"sparql_local(", "sparql_remote("} {
		idx := strings.Index(code, marker)
		if idx < 0 {
			continue
		}
		return extractNameArg(code[idx:])
	}
	return ""
}

// extractNameArg pulls the string literal bound to the "name" keyword
// argument or second positional argument of a tool call, a best-effort
// scan good enough for the common single-line call shape.
func extractNameArg(callSite string) string {
	nameIdx := strings.Index(callSite, "name")
	if nameIdx < 0 {
		// Second positional argument: skip the first string literal.
		rest := callSite
		for i := 0; i < 2; i++ {
			start := strings.IndexAny(rest, `"'`)
			if start < 0 {
				return ""
			}
			end := strings.IndexByte(rest[start+1:], rest[start])
			if end < 0 {
				return ""
			}
			if i == 1 {
				return rest[start+1 : start+1+end]
			}
			rest = rest[start+1+end+1:]
		}
	}
	rest := callSite[nameIdx:]
	start := strings.IndexAny(rest, `"'`)
	if start < 0 {
		return ""
	}
	quote := rest[start]
	end := strings.IndexByte(rest[start+1:], quote)
	if end < 0 {
		return ""
	}
	return rest[start+1 : start+1+end]
}

// buildResultPrompt renders one step's executed output back into the
// conversation, following the REPL-result framing convention.
func buildResultPrompt(output string) string {
	if output == "" {
		return "[Result]\n(no output)"
	}
	return "[Result]\n" + output
}

// extractCode finds the first fenced code block in a model response and
// splits it from the surrounding reasoning text. Per spec §4.5's tie-break,
// any additional code block in the same response is discarded.
func extractCode(response string) (reasoning, code string, hasCode bool) {
	const fence = "```"
	start := strings.Index(response, fence)
	if start < 0 {
		return strings.TrimSpace(response), "", false
	}
	reasoning = strings.TrimSpace(response[:start])

	rest := response[start+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && nl < 16 {
		// Skip an optional language tag on the opening fence line (```js).
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return reasoning, strings.TrimSpace(rest), true
	}
	return reasoning, strings.TrimSpace(rest[:end]), true
}

// extractFallback asks the root model to emit the terminal payload
// directly from the trajectory so far, per spec §4.5's budget-exhaustion
// handling. The resulting Prediction always carries Converged = false.
func (d *Driver) extractFallback(ctx context.Context, runID, trajectoryID string, messages []llm.Message, traj model.Trajectory) (Prediction, error) {
	fields := make([]string, len(d.schema))
	for i, f := range d.schema {
		fields[i] = fmt.Sprintf("%q (%s)", f.Name, f.Kind)
	}
	ask := fmt.Sprintf(
		"Budget reached. Respond with ONLY a JSON object carrying these fields: %s. No prose, no code fence.",
		strings.Join(fields, ", "))
	messages = append(messages, llm.Message{Role: "user", Content: ask})

	resp, err := d.completeWithRetry(ctx, messages)
	if err != nil {
		traj.IterationCount = len(traj.Entries)
		return Prediction{Trajectory: traj}, fmt.Errorf("driver-crashed: extract fallback call failed: %w", err)
	}

	payload := map[string]any{}
	_ = json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &payload)
	if valErr := d.schema.Validate(payload); valErr != nil {
		slog.WarnContext(ctx, "rlm driver: extract fallback payload failed validation, returning best-effort fields",
			"run_id", runID, "trajectory_id", trajectoryID, "error", valErr)
	}

	traj.FinalOutput = payload
	traj.Extracted = true
	traj.Converged = false
	traj.IterationCount = len(traj.Entries)
	return Prediction{Fields: payload, Trajectory: traj, Converged: false}, nil
}
