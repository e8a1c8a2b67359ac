package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/chain"
	"github.com/hupe1980/agentchain/logging"
	"github.com/hupe1980/agentchain/tool"
)

// Status describes where a run is in its lifecycle. Finished and StoppedEarly
// are terminal.
type Status string

const (
	// StatusRunning indicates the loop is still iterating.
	StatusRunning Status = "running"

	// StatusFinished indicates the policy produced a final answer.
	StatusFinished Status = "finished"

	// StatusStoppedEarly indicates an iteration or time limit was reached
	// before a final answer.
	StatusStoppedEarly Status = "stopped_early"
)

// Fixed results surfaced when a limit stops the loop. These are normal,
// documented result strings, not errors.
const (
	StoppedMaxIterations    = "Agent stopped due to max iterations."
	StoppedMaxExecutionTime = "Agent stopped due to max execution time."
)

// invalidFormatObservation is fed back to the model after a parse failure.
const invalidFormatObservation = "Invalid format. Reply with a line 'Action: <tool name>' followed by a line 'Action Input: <input>'."

// DefaultMaxIterations bounds a run when no explicit limit is configured.
const DefaultMaxIterations = 15

// ExecutorOptions configure an Executor.
type ExecutorOptions struct {
	// MaxIterations caps the number of loop iterations. Nil means unbounded;
	// zero stops the run before any policy call.
	MaxIterations *int

	// MaxExecutionTime caps total wall-clock loop duration, checked between
	// iterations only. Nil means unbounded.
	MaxExecutionTime *time.Duration

	// Callbacks receives lifecycle events when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for this executor.
	Verbose *bool

	// Logger used for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// WithMaxIterations caps the number of loop iterations.
func WithMaxIterations(n int) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.MaxIterations = &n }
}

// WithoutIterationLimit removes the default iteration cap.
func WithoutIterationLimit() func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.MaxIterations = nil }
}

// WithMaxExecutionTime caps total wall-clock loop duration.
func WithMaxExecutionTime(d time.Duration) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.MaxExecutionTime = &d }
}

// WithCallbacks sets the callback manager receiving lifecycle events.
func WithCallbacks(m *callback.Manager) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.Callbacks = m }
}

// WithVerbose overrides the process-wide verbosity default.
func WithVerbose(v bool) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.Verbose = &v }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.Logger = l }
}

// Executor drives the agent control loop: it asks the policy for a decision
// over the current scratchpad, dispatches tool actions, feeds observations
// back into the scratchpad, and decides the terminal output.
//
// The Executor holds only configuration; all per-run state (scratchpad,
// iteration counter, elapsed time, status) is created at the start of Run and
// destroyed at its end. Concurrent runs of one configured Executor are safe,
// but an individual run's state is not shared.
//
// Execution is single-threaded and cooperative: exactly one model or tool
// call is in flight at a time, no individual call carries a timeout, and the
// only cancellation primitive between collaborator calls is refusing to start
// the next iteration.
type Executor struct {
	policy           Policy
	registry         *tool.Registry
	maxIterations    *int
	maxExecutionTime *time.Duration
	callbacks        *callback.Manager
	verbose          bool
	logger           logging.Logger
}

var _ chain.Chain = (*Executor)(nil)

// NewExecutor creates an Executor over a policy and tool registry.
// Default configuration: 15 iterations maximum, no wall-clock limit.
func NewExecutor(policy Policy, registry *tool.Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	defaultIters := DefaultMaxIterations

	opts := ExecutorOptions{
		MaxIterations: &defaultIters,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		policy:           policy,
		registry:         registry,
		maxIterations:    opts.MaxIterations,
		maxExecutionTime: opts.MaxExecutionTime,
		callbacks:        opts.Callbacks,
		verbose:          callback.ResolveVerbosity(opts.Verbose),
		logger:           opts.Logger,
	}
}

// runState is the executor's per-run mutable state. Created at the start of
// Run, discarded at its end.
type runState struct {
	scratchpad *Scratchpad
	iterations int
	startedAt  time.Time
	status     Status
}

// shouldContinue reports whether another iteration may start, checked before
// each iteration (not preemptively during a long-running call).
func (e *Executor) shouldContinue(st *runState) bool {
	if e.maxIterations != nil && st.iterations >= *e.maxIterations {
		return false
	}
	if e.maxExecutionTime != nil && time.Since(st.startedAt) > *e.maxExecutionTime {
		return false
	}
	return true
}

// stoppedEarlyResult picks the fixed message matching the limit that fired.
func (e *Executor) stoppedEarlyResult(st *runState) string {
	if e.maxIterations != nil && st.iterations >= *e.maxIterations {
		return StoppedMaxIterations
	}
	return StoppedMaxExecutionTime
}

// Run executes the loop for one input and returns the terminal output.
//
// Each iteration asks the policy for a decision. A Finish decision ends the
// run. An action naming an unknown tool is converted into an observation and
// the loop continues. A *ParseError from the policy is recovered by feeding a
// corrective observation back to the model; it consumes an iteration slot, so
// repeated malformed output is bounded by the same limits. Any other
// collaborator failure propagates to the caller.
func (e *Executor) Run(ctx context.Context, input string) (string, error) {
	runID := callback.NewID()

	st := &runState{
		scratchpad: NewScratchpad(),
		startedAt:  time.Now(),
		status:     StatusRunning,
	}

	e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventChainStart, map[string]any{"input": input}))

	for e.shouldContinue(st) {
		decision, err := e.policy.Decide(ctx, runID, input, st.scratchpad)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				e.logger.Warn("malformed model output", "iteration", st.iterations)
				e.appendStep(runID, st, parseErr.Text, invalidFormatObservation)
				st.iterations++
				continue
			}

			e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventError, map[string]any{"error": err.Error()}))

			return "", fmt.Errorf("agent executor: %w", err)
		}

		switch d := decision.(type) {
		case *Finish:
			st.status = StatusFinished
			e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventChainEnd, map[string]any{"output": d.Output}))

			return d.Output, nil

		case *Action:
			observation, err := e.dispatch(ctx, runID, d)
			if err != nil {
				e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventError, map[string]any{"error": err.Error()}))

				return "", fmt.Errorf("agent executor: %w", err)
			}

			e.appendStep(runID, st, d.Log, observation)

		default:
			return "", fmt.Errorf("agent executor: unexpected decision type %T", decision)
		}

		st.iterations++
	}

	st.status = StatusStoppedEarly
	output := e.stoppedEarlyResult(st)

	e.logger.Info("run stopped early", "iterations", st.iterations)
	e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventChainEnd, map[string]any{"output": output}))

	return output, nil
}

// dispatch resolves the action's tool and returns the observation. An unknown
// tool name is not fatal: it becomes an observation telling the model the
// tool is unavailable.
func (e *Executor) dispatch(ctx context.Context, runID string, a *Action) (string, error) {
	if _, ok := e.registry.Lookup(a.Tool); !ok {
		e.logger.Warn("unknown tool requested", "tool", a.Tool)
		return fmt.Sprintf("%s is not a valid tool, try another one.", a.Tool), nil
	}

	e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventToolStart, map[string]any{
		"tool":  a.Tool,
		"input": a.ToolInput,
	}))

	observation, err := e.registry.Invoke(ctx, a.Tool, a.ToolInput)
	if err != nil {
		return "", err
	}

	e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventToolEnd, map[string]any{
		"tool":        a.Tool,
		"observation": observation,
	}))

	return observation, nil
}

// appendStep records one scratchpad pair and emits the Text event for the
// rendered append.
func (e *Executor) appendStep(runID string, st *runState, actionText, observation string) {
	st.scratchpad.Append(actionText, observation)

	e.emit(callback.NewEvent(runID, "AgentExecutor", callback.EventText, map[string]any{
		"action":      actionText,
		"observation": observation,
	}))
}

func (e *Executor) emit(ev callback.Event) {
	if e.verbose {
		e.callbacks.Emit(ev)
	}
}

// InputKeys implements chain.Chain.
func (e *Executor) InputKeys() []string { return []string{"input"} }

// OutputKeys implements chain.Chain.
func (e *Executor) OutputKeys() []string { return []string{"output"} }

// Call implements chain.Chain, exposing the executor as a single input/single
// output step for sequential composition.
func (e *Executor) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	input, ok := inputs["input"]
	if !ok {
		return nil, fmt.Errorf("agent executor: missing required input key %q", "input")
	}

	output, err := e.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	return map[string]string{"output": output}, nil
}
