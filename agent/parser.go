package agent

import (
	"fmt"
	"regexp"
	"strings"
)

// FinalAnswerMarker is the reserved action name distinguishing termination
// from tool dispatch.
const FinalAnswerMarker = "Final Answer"

// Decision is the outcome of one policy call: either a tool dispatch (Action)
// or termination (Finish).
type Decision interface {
	decision()
}

// Action is a decision to dispatch to a named tool. Immutable once produced.
type Action struct {
	// Tool is the parsed tool name, matched exactly (case-sensitive)
	// against the registry.
	Tool string

	// ToolInput is the remainder of the "Action Input:" line, not parsed
	// further.
	ToolInput string

	// Log is the raw model text the action was parsed from. It is what gets
	// rendered back into the scratchpad.
	Log string
}

func (*Action) decision() {}

// Finish is the terminal decision carrying the run's final output.
type Finish struct {
	// Output is the run's result.
	Output string

	// Log is the raw model text the decision was parsed from.
	Log string
}

func (*Finish) decision() {}

// ParseError reports model output from which no decision could be extracted.
// The executor treats it as a recoverable per-iteration condition.
type ParseError struct {
	// Text is the raw model output that failed to parse.
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model output: %q", e.Text)
}

// actionPattern matches an "Action:" line followed by an "Action Input:"
// line. The tool name is confined to its line; the input is the remainder of
// the input line.
var actionPattern = regexp.MustCompile(`Action\s*:\s*([^\n]*?)\s*\n+\s*Action\s+Input\s*:\s*([^\n]*)`)

// ParseDecision extracts a decision from raw model text.
//
// It recognizes a line matching "Action: <name>" followed by a line matching
// "Action Input: <input>". If <name> equals FinalAnswerMarker the result is a
// *Finish carrying <input> as output; otherwise a tool dispatch *Action. When
// neither pattern is found it fails with *ParseError.
//
// ParseDecision is a pure function: the same text always yields the same decision.
func ParseDecision(text string) (Decision, error) {
	m := actionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Text: text}
	}

	name := strings.TrimSpace(m[1])
	input := strings.TrimSpace(m[2])

	if name == FinalAnswerMarker {
		return &Finish{Output: input, Log: text}, nil
	}

	return &Action{Tool: name, ToolInput: input, Log: text}, nil
}
