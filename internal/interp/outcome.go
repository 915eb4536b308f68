// Package interp implements the code interpreter (C3): a persistent,
// per-run JavaScript evaluation namespace built on goja. Model-emitted code
// runs against this namespace until it invokes a termination callable or
// raises an exception.
package interp

// Outcome is the result of one Execute call. Exactly one of the three
// concrete shapes below is populated, selected by Kind.
type Outcome struct {
	Kind Kind

	// Terminal
	Payload map[string]any

	// Text
	Output    string
	Truncated bool

	// RecoverableError
	ErrorClass string
	Message    string
}

// Kind discriminates the three outcome shapes the driver (C5) classifies
// per spec §4.3/§4.5.
type Kind string

const (
	KindTerminal         Kind = "terminal"
	KindText             Kind = "text"
	KindRecoverableError Kind = "recoverable_error"
)

// Error classes surfaced on RecoverableError outcomes.
const (
	ErrorClassScript  = "script-error"
	ErrorClassTimeout = "timeout"
)

func terminalOutcome(payload map[string]any) Outcome {
	return Outcome{Kind: KindTerminal, Payload: payload}
}

func textOutcome(output string, truncated bool) Outcome {
	return Outcome{Kind: KindText, Output: output, Truncated: truncated}
}

func recoverableErrorOutcome(class, message string) Outcome {
	return Outcome{Kind: KindRecoverableError, ErrorClass: class, Message: message}
}
