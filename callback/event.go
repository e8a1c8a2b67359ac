package callback

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the lifecycle point an Event was emitted from.
//
// The set of kinds is closed: every emitting component maps one lifecycle
// transition to exactly one kind, and the Manager routes each kind to the
// corresponding Handler method.
type EventKind string

const (
	// EventChainStart is emitted once when a chain or executor run begins.
	EventChainStart EventKind = "chain_start"

	// EventChainEnd is emitted once when a chain or executor run completes.
	EventChainEnd EventKind = "chain_end"

	// EventLLMStart is emitted before each model completion call.
	EventLLMStart EventKind = "llm_start"

	// EventLLMEnd is emitted after each model completion call returns.
	EventLLMEnd EventKind = "llm_end"

	// EventToolStart is emitted before each tool dispatch.
	EventToolStart EventKind = "tool_start"

	// EventToolEnd is emitted after each tool dispatch returns.
	EventToolEnd EventKind = "tool_end"

	// EventText is emitted for free-form progress text, e.g. a rendered
	// scratchpad append or an intermediate pipeline value.
	EventText EventKind = "text"

	// EventError is emitted when a component is about to propagate a failure.
	EventError EventKind = "error"
)

// Event is the unit of communication on the bus. After emission it should be
// treated as immutable. It captures:
//   - Correlation (ID, RunID)
//   - The emitting component's identity (Component)
//   - The lifecycle point (Kind)
//   - A free-form payload mapping (inputs, outputs, prompts, observations)
//   - High precision UTC timestamp
type Event struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Kind      EventKind      `json:"kind"`
	Component string         `json:"component"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event authored by 'component' bound to a run.
func NewEvent(runID, component string, kind EventKind, payload map[string]any) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Kind:      kind,
		Component: component,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewID returns a new globally unique identifier for events and runs.
func NewID() string { return uuid.NewString() }
