package chain

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/logging"
)

// ContextSequentialChainOptions configure a ContextSequentialChain.
type ContextSequentialChainOptions struct {
	// OutputVariables explicitly declares the variables returned to the
	// caller. When empty, outputs default to the final step's output keys,
	// or all newly produced variables if ReturnAll is set.
	OutputVariables []string

	// ReturnAll selects the inference rule for undeclared output variables.
	ReturnAll bool

	// Callbacks receives lifecycle events when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for this chain.
	Verbose *bool

	// Logger used for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ContextSequentialChain composes LLM steps like SequentialChain, but
// additionally accumulates a running textual context: each step's effective
// prompt is the concatenation of every prior step's rendered prompt and
// response, followed by the step's own rendered template.
//
// The accumulated context is an explicit per-call value threaded through the
// steps; the underlying prompt templates are never mutated and the chain is
// safe for concurrent invocations.
type ContextSequentialChain struct {
	chains          []*LLMChain
	inputVariables  []string
	outputVariables []string
	callbacks       *callback.Manager
	verbose         bool
	logger          logging.Logger
}

// NewContextSequentialChain validates variable flow over the LLM steps and
// returns the composed chain. Validation failures are reported as
// *ValidationError.
func NewContextSequentialChain(chains []*LLMChain, inputVariables []string, optFns ...func(o *ContextSequentialChainOptions)) (*ContextSequentialChain, error) {
	opts := ContextSequentialChainOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	subs := make([]Chain, len(chains))
	for i, c := range chains {
		subs[i] = c
	}

	known, err := validateVariableFlow(subs, inputVariables)
	if err != nil {
		return nil, err
	}

	outputVariables, err := resolveOutputVariables(subs, inputVariables, known, opts.OutputVariables, opts.ReturnAll)
	if err != nil {
		return nil, err
	}

	return &ContextSequentialChain{
		chains:          chains,
		inputVariables:  inputVariables,
		outputVariables: outputVariables,
		callbacks:       opts.Callbacks,
		verbose:         callback.ResolveVerbosity(opts.Verbose),
		logger:          opts.Logger,
	}, nil
}

// InputKeys implements Chain.
func (c *ContextSequentialChain) InputKeys() []string { return c.inputVariables }

// OutputKeys implements Chain.
func (c *ContextSequentialChain) OutputKeys() []string { return c.outputVariables }

// Call implements Chain. Each step receives the accumulated prompt+response
// context of all prior steps as a prefix on its rendered prompt; the
// accumulator grows monotonically with every step.
func (c *ContextSequentialChain) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	runID := callback.NewID()

	if err := checkInputs(c.inputVariables, inputs); err != nil {
		return nil, fmt.Errorf("context sequential chain: %w", err)
	}

	c.emit(callback.NewEvent(runID, "ContextSequentialChain", callback.EventChainStart, map[string]any{"inputs": inputs}))
	c.logger.Debug("context sequential chain started", "steps", len(c.chains))

	known := make(map[string]string, len(inputs))
	for k, v := range inputs {
		known[k] = v
	}

	accumulated := ""

	for i, sub := range c.chains {
		rendered, output, err := sub.complete(ctx, runID, accumulated, known)
		if err != nil {
			c.emit(callback.NewEvent(runID, "ContextSequentialChain", callback.EventError, map[string]any{
				"step":  i,
				"error": err.Error(),
			}))
			return nil, fmt.Errorf("context sequential chain step %d: %w", i, err)
		}

		accumulated = rendered + output
		known[sub.OutputKeys()[0]] = output

		c.emit(callback.NewEvent(runID, "ContextSequentialChain", callback.EventText, map[string]any{
			"step": i,
			"text": output,
		}))
	}

	result := make(map[string]string, len(c.outputVariables))
	for _, k := range c.outputVariables {
		result[k] = known[k]
	}

	c.emit(callback.NewEvent(runID, "ContextSequentialChain", callback.EventChainEnd, map[string]any{"outputs": result}))

	return result, nil
}

func (c *ContextSequentialChain) emit(e callback.Event) {
	if c.verbose {
		c.callbacks.Emit(e)
	}
}
