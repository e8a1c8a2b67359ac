package chain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/logging"
)

// SequentialChainOptions configure a SequentialChain.
type SequentialChainOptions struct {
	// OutputVariables explicitly declares the variables returned to the
	// caller. When empty, outputs are inferred: all newly produced variables
	// if ReturnAll is set, otherwise exactly the final sub-chain's output keys.
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

// SequentialChain invokes an ordered list of sub-chains, threading a growing
// variable environment through them: each sub-chain receives the full
// accumulated environment and contributes its declared output keys to it.
//
// Variable flow is validated once at construction: a sub-chain may not
// consume a variable that is not yet known, nor produce one that collides
// with an already known name. A SequentialChain that failed validation is
// never returned to the caller.
type SequentialChain struct {
	chains          []Chain
	inputVariables  []string
	outputVariables []string
	callbacks       *callback.Manager
	verbose         bool
	logger          logging.Logger
}

// NewSequentialChain validates variable flow over the sub-chains and returns
// the composed chain. Validation failures are reported as *ValidationError.
func NewSequentialChain(chains []Chain, inputVariables []string, optFns ...func(o *SequentialChainOptions)) (*SequentialChain, error) {
	opts := SequentialChainOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	known, err := validateVariableFlow(chains, inputVariables)
	if err != nil {
		return nil, err
	}

	outputVariables, err := resolveOutputVariables(chains, inputVariables, known, opts.OutputVariables, opts.ReturnAll)
	if err != nil {
		return nil, err
	}

	return &SequentialChain{
		chains:          chains,
		inputVariables:  inputVariables,
		outputVariables: outputVariables,
		callbacks:       opts.Callbacks,
		verbose:         callback.ResolveVerbosity(opts.Verbose),
		logger:          opts.Logger,
	}, nil
}

// InputKeys implements Chain.
func (c *SequentialChain) InputKeys() []string { return c.inputVariables }

// OutputKeys implements Chain.
func (c *SequentialChain) OutputKeys() []string { return c.outputVariables }

// Call implements Chain. Sub-chains are invoked strictly in order; each
// receives the full accumulated environment but contributes only its own
// declared output keys before the next step runs.
func (c *SequentialChain) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	runID := callback.NewID()

	if err := checkInputs(c.inputVariables, inputs); err != nil {
		return nil, fmt.Errorf("sequential chain: %w", err)
	}

	c.emit(callback.NewEvent(runID, "SequentialChain", callback.EventChainStart, map[string]any{"inputs": inputs}))
	c.logger.Debug("sequential chain started", "steps", len(c.chains))

	known := make(map[string]string, len(inputs))
	for k, v := range inputs {
		known[k] = v
	}

	for i, sub := range c.chains {
		outputs, err := sub.Call(ctx, known)
		if err != nil {
			c.emit(callback.NewEvent(runID, "SequentialChain", callback.EventError, map[string]any{
				"step":  i,
				"error": err.Error(),
			}))
			return nil, fmt.Errorf("sequential chain step %d: %w", i, err)
		}

		selected, err := selectOutputs(sub.OutputKeys(), outputs)
		if err != nil {
			return nil, fmt.Errorf("sequential chain step %d: %w", i, err)
		}

		for k, v := range selected {
			known[k] = v
		}

		c.emit(callback.NewEvent(runID, "SequentialChain", callback.EventText, map[string]any{
			"step":    i,
			"outputs": selected,
		}))
	}

	result := make(map[string]string, len(c.outputVariables))
	for _, k := range c.outputVariables {
		result[k] = known[k]
	}

	c.emit(callback.NewEvent(runID, "SequentialChain", callback.EventChainEnd, map[string]any{"outputs": result}))

	return result, nil
}

func (c *SequentialChain) emit(e callback.Event) {
	if c.verbose {
		c.callbacks.Emit(e)
	}
}

// validateVariableFlow walks the sub-chains in order, accumulating the known
// variable set from the declared inputs, and rejects missing input keys or
// colliding output keys.
func validateVariableFlow(chains []Chain, inputVariables []string) (map[string]struct{}, error) {
	if len(chains) == 0 {
		return nil, validationErrorf("at least one sub-chain is required")
	}

	known := make(map[string]struct{}, len(inputVariables))
	for _, v := range inputVariables {
		known[v] = struct{}{}
	}

	for i, sub := range chains {
		var missing []string
		for _, k := range sub.InputKeys() {
			if _, ok := known[k]; !ok {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return nil, validationErrorf("step %d: missing required input keys: %s", i, strings.Join(missing, ", "))
		}

		var overlapping []string
		for _, k := range sub.OutputKeys() {
			if _, ok := known[k]; ok {
				overlapping = append(overlapping, k)
			}
		}
		if len(overlapping) > 0 {
			return nil, validationErrorf("step %d: chain returned keys that already exist: %s", i, strings.Join(overlapping, ", "))
		}

		for _, k := range sub.OutputKeys() {
			known[k] = struct{}{}
		}
	}

	return known, nil
}

// resolveOutputVariables applies the output inference rules: explicit
// declarations must be a subset of the final known set; otherwise the outputs
// default to all newly produced variables (return-all) or the final
// sub-chain's output keys.
func resolveOutputVariables(
	chains []Chain,
	inputVariables []string,
	known map[string]struct{},
	declared []string,
	returnAll bool,
) ([]string, error) {
	if len(declared) > 0 {
		var missing []string
		for _, k := range declared {
			if _, ok := known[k]; !ok {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return nil, validationErrorf("expected output variables that were not found: %s", strings.Join(missing, ", "))
		}
		return declared, nil
	}

	if returnAll {
		inputs := make(map[string]struct{}, len(inputVariables))
		for _, v := range inputVariables {
			inputs[v] = struct{}{}
		}

		var produced []string
		for k := range known {
			if _, ok := inputs[k]; !ok {
				produced = append(produced, k)
			}
		}
		sort.Strings(produced)

		return produced, nil
	}

	return chains[len(chains)-1].OutputKeys(), nil
}

// SimpleSequentialChainOptions configure a SimpleSequentialChain.
type SimpleSequentialChainOptions struct {
	// StripOutputs trims surrounding whitespace from each step's output
	// before it is handed to the next step.
	StripOutputs bool

	// InputKey names the single input variable. Defaults to "input".
	InputKey string

	// OutputKey names the single output variable. Defaults to "output".
	OutputKey string

	// Callbacks receives lifecycle events when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for this chain.
	Verbose *bool

	// Logger used for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// SimpleSequentialChain threads one scalar string value through sub-chains
// that each declare exactly one input and one output variable.
type SimpleSequentialChain struct {
	chains       []Chain
	stripOutputs bool
	inputKey     string
	outputKey    string
	callbacks    *callback.Manager
	verbose      bool
	logger       logging.Logger
}

// NewSimpleSequentialChain verifies that every sub-chain is single
// input/single output and returns the composed chain.
func NewSimpleSequentialChain(chains []Chain, optFns ...func(o *SimpleSequentialChainOptions)) (*SimpleSequentialChain, error) {
	opts := SimpleSequentialChainOptions{
		InputKey:  "input",
		OutputKey: "output",
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if len(chains) == 0 {
		return nil, validationErrorf("at least one sub-chain is required")
	}

	for i, sub := range chains {
		if n := len(sub.InputKeys()); n != 1 {
			return nil, validationErrorf("step %d: expected exactly one input key, got %d", i, n)
		}
		if n := len(sub.OutputKeys()); n != 1 {
			return nil, validationErrorf("step %d: expected exactly one output key, got %d", i, n)
		}
	}

	return &SimpleSequentialChain{
		chains:       chains,
		stripOutputs: opts.StripOutputs,
		inputKey:     opts.InputKey,
		outputKey:    opts.OutputKey,
		callbacks:    opts.Callbacks,
		verbose:      callback.ResolveVerbosity(opts.Verbose),
		logger:       opts.Logger,
	}, nil
}

// InputKeys implements Chain.
func (c *SimpleSequentialChain) InputKeys() []string { return []string{c.inputKey} }

// OutputKeys implements Chain.
func (c *SimpleSequentialChain) OutputKeys() []string { return []string{c.outputKey} }

// Call implements Chain, threading the scalar value through every step.
func (c *SimpleSequentialChain) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	runID := callback.NewID()

	if err := checkInputs([]string{c.inputKey}, inputs); err != nil {
		return nil, fmt.Errorf("simple sequential chain: %w", err)
	}

	c.emit(callback.NewEvent(runID, "SimpleSequentialChain", callback.EventChainStart, map[string]any{"inputs": inputs}))
	c.logger.Debug("simple sequential chain started", "steps", len(c.chains))

	value := inputs[c.inputKey]

	for i, sub := range c.chains {
		out, err := sub.Call(ctx, map[string]string{sub.InputKeys()[0]: value})
		if err != nil {
			c.emit(callback.NewEvent(runID, "SimpleSequentialChain", callback.EventError, map[string]any{
				"step":  i,
				"error": err.Error(),
			}))
			return nil, fmt.Errorf("simple sequential chain step %d: %w", i, err)
		}

		value = out[sub.OutputKeys()[0]]
		if c.stripOutputs {
			value = strings.TrimSpace(value)
		}

		c.emit(callback.NewEvent(runID, "SimpleSequentialChain", callback.EventText, map[string]any{
			"step": i,
			"text": value,
		}))
	}

	outputs := map[string]string{c.outputKey: value}
	c.emit(callback.NewEvent(runID, "SimpleSequentialChain", callback.EventChainEnd, map[string]any{"outputs": outputs}))

	return outputs, nil
}

func (c *SimpleSequentialChain) emit(e callback.Event) {
	if c.verbose {
		c.callbacks.Emit(e)
	}
}
