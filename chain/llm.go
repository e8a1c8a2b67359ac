package chain

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/logging"
	"github.com/hupe1980/agentchain/model"
	"github.com/hupe1980/agentchain/prompt"
)

// LLMChainOptions configure an LLMChain.
type LLMChainOptions struct {
	// OutputKey names the variable the completion is bound to. Defaults to "text".
	OutputKey string

	// Stop sequences passed to every model call.
	Stop []string

	// Callbacks receives lifecycle events when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for this chain.
	Verbose *bool

	// Logger used for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// LLMChain renders a prompt template against the variable environment, sends
// it to a model and binds the completion to a single output variable. Its
// input keys are exactly the template's declared input variables.
//
// LLMChain is stateless per call and safe for concurrent invocations.
type LLMChain struct {
	model     model.Model
	prompt    *prompt.Template
	outputKey string
	stop      []string
	callbacks *callback.Manager
	verbose   bool
	logger    logging.Logger
}

// NewLLMChain creates an LLMChain over the given model and prompt template.
func NewLLMChain(m model.Model, p *prompt.Template, optFns ...func(o *LLMChainOptions)) *LLMChain {
	opts := LLMChainOptions{
		OutputKey: "text",
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &LLMChain{
		model:     m,
		prompt:    p,
		outputKey: opts.OutputKey,
		stop:      opts.Stop,
		callbacks: opts.Callbacks,
		verbose:   callback.ResolveVerbosity(opts.Verbose),
		logger:    opts.Logger,
	}
}

// InputKeys implements Chain; they are the prompt template's input variables.
func (c *LLMChain) InputKeys() []string { return c.prompt.InputVariables() }

// OutputKeys implements Chain.
func (c *LLMChain) OutputKeys() []string { return []string{c.outputKey} }

// Call implements Chain. It renders the prompt, completes it and returns the
// completion under the configured output key.
func (c *LLMChain) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	runID := callback.NewID()

	if err := checkInputs(c.InputKeys(), inputs); err != nil {
		return nil, fmt.Errorf("llm chain: %w", err)
	}

	c.emit(callback.NewEvent(runID, "LLMChain", callback.EventChainStart, map[string]any{"inputs": inputs}))

	_, output, err := c.complete(ctx, runID, "", inputs)
	if err != nil {
		c.emit(callback.NewEvent(runID, "LLMChain", callback.EventError, map[string]any{"error": err.Error()}))
		return nil, err
	}

	outputs := map[string]string{c.outputKey: output}
	c.emit(callback.NewEvent(runID, "LLMChain", callback.EventChainEnd, map[string]any{"outputs": outputs}))

	return outputs, nil
}

// Predict is the scalar convenience over Call.
func (c *LLMChain) Predict(ctx context.Context, inputs map[string]string) (string, error) {
	outputs, err := c.Call(ctx, inputs)
	if err != nil {
		return "", err
	}
	return outputs[c.outputKey], nil
}

// complete renders the template (with an optional accumulated context prefix),
// calls the model once bracketed by an LLMStart/LLMEnd pair, and returns both
// the rendered prompt and the completion. The prefix is an explicit
// accumulator value; the underlying template is never mutated.
func (c *LLMChain) complete(ctx context.Context, runID, prefix string, inputs map[string]string) (string, string, error) {
	rendered, err := c.prompt.Render(pick(c.prompt.InputVariables(), inputs))
	if err != nil {
		return "", "", fmt.Errorf("llm chain: %w", err)
	}

	rendered = prefix + rendered

	c.emit(callback.NewEvent(runID, "LLMChain", callback.EventLLMStart, map[string]any{"prompt": rendered}))

	output, err := c.model.Complete(ctx, rendered, c.stop)
	if err != nil {
		c.logger.Error("llm chain completion failed", "error", err)
		return "", "", fmt.Errorf("llm chain: %w", err)
	}

	c.emit(callback.NewEvent(runID, "LLMChain", callback.EventLLMEnd, map[string]any{"output": output}))

	return rendered, output, nil
}

func (c *LLMChain) emit(e callback.Event) {
	if c.verbose {
		c.callbacks.Emit(e)
	}
}

// pick narrows the environment to the given keys. Missing keys are simply
// absent; the template render reports them.
func pick(keys []string, inputs map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := inputs[k]; ok {
			out[k] = v
		}
	}
	return out
}
