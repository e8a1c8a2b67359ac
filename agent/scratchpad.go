package agent

import "strings"

// observationPrefix and thoughtPrefix frame each observation when the
// scratchpad is rendered back into model context.
const (
	observationPrefix = "Observation: "
	thoughtPrefix     = "Thought:"
)

// Step is one (action text, observation) pair recorded by the executor.
type Step struct {
	ActionText  string
	Observation string
}

// Scratchpad is the append-only record of prior action/observation pairs for
// one run. It is owned exclusively by a single in-progress run and is not
// safe for concurrent mutation.
type Scratchpad struct {
	steps []Step
}

// NewScratchpad creates an empty scratchpad.
func NewScratchpad() *Scratchpad {
	return &Scratchpad{}
}

// Append records one action/observation pair.
func (s *Scratchpad) Append(actionText, observation string) {
	s.steps = append(s.steps, Step{ActionText: actionText, Observation: observation})
}

// Len returns the number of recorded pairs.
func (s *Scratchpad) Len() int { return len(s.steps) }

// Steps returns a copy of the recorded pairs in append order.
func (s *Scratchpad) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Render serializes the scratchpad for inclusion in model context: each
// action's raw text verbatim, its observation, and a trailing thought prompt
// inviting the model's next step.
func (s *Scratchpad) Render() string {
	var sb strings.Builder
	for _, step := range s.steps {
		sb.WriteString(step.ActionText)
		sb.WriteString("\n")
		sb.WriteString(observationPrefix)
		sb.WriteString(step.Observation)
		sb.WriteString("\n")
		sb.WriteString(thoughtPrefix)
	}
	return sb.String()
}
