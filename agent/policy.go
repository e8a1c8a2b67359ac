package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/logging"
	"github.com/hupe1980/agentchain/model"
	"github.com/hupe1980/agentchain/prompt"
	"github.com/hupe1980/agentchain/tool"
)

// Policy produces one decision per call from the original input and the
// accumulated scratchpad. Implementations must be stateless per call; all
// run state lives in the executor.
//
// A *ParseError from decision parsing is not swallowed here; it propagates
// to the executor, which owns recovery policy.
type Policy interface {
	Decide(ctx context.Context, runID, input string, scratchpad *Scratchpad) (Decision, error)
}

// promptPrefix through promptSuffix assemble the zero-shot prompt. The format
// instructions mirror what ParseDecision recognizes.
const (
	promptPrefix = "Answer the following questions as best you can. You have access to the following tools:"

	promptFormat = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s] or "Final Answer"
Action Input: the input to the action, or the final answer
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)`

	promptSuffix = `Begin!

Question: {{.input}}
Thought:{{.scratchpad}}`
)

// defaultStop bounds generation before the model starts hallucinating
// observations; the parser then receives only the intended action text.
var defaultStop = []string{"\n" + strings.TrimSpace(observationPrefix)}

// ZeroShotPolicyOptions configure a ZeroShotPolicy.
type ZeroShotPolicyOptions struct {
	// Stop sequences passed to every model call. Defaults to stopping before
	// a synthetic "Observation:" marker.
	Stop []string

	// Callbacks receives LLMStart/LLMEnd events when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for this policy.
	Verbose *bool

	// Logger used for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ZeroShotPolicy prompts a model with the registry's tool names and
// descriptions, the original input and the rendered scratchpad, then parses
// the completion into a decision. One model call per Decide; one
// LLMStart/LLMEnd pair per call when verbose.
type ZeroShotPolicy struct {
	model     model.Model
	template  *prompt.Template
	stop      []string
	callbacks *callback.Manager
	verbose   bool
	logger    logging.Logger
}

// NewZeroShotPolicy builds the zero-shot prompt from the registry's tools and
// returns the policy. The tool listing is fixed at construction; only the
// input and scratchpad vary per call.
func NewZeroShotPolicy(m model.Model, registry *tool.Registry, optFns ...func(o *ZeroShotPolicyOptions)) (*ZeroShotPolicy, error) {
	opts := ZeroShotPolicyOptions{
		Stop:   defaultStop,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	text := strings.Join([]string{
		promptPrefix,
		registry.Describe(),
		fmt.Sprintf(promptFormat, strings.Join(registry.Names(), ", ")),
		promptSuffix,
	}, "\n\n")

	template, err := prompt.New(text, "input", "scratchpad")
	if err != nil {
		return nil, fmt.Errorf("zero-shot policy: %w", err)
	}

	return &ZeroShotPolicy{
		model:     m,
		template:  template,
		stop:      opts.Stop,
		callbacks: opts.Callbacks,
		verbose:   callback.ResolveVerbosity(opts.Verbose),
		logger:    opts.Logger,
	}, nil
}

// Decide implements Policy. It renders the prompt, invokes the model once and
// delegates to ParseDecision. Parse failures propagate to the executor.
func (p *ZeroShotPolicy) Decide(ctx context.Context, runID, input string, scratchpad *Scratchpad) (Decision, error) {
	rendered, err := p.template.Render(map[string]string{
		"input":      input,
		"scratchpad": scratchpad.Render(),
	})
	if err != nil {
		return nil, fmt.Errorf("zero-shot policy: %w", err)
	}

	p.emit(callback.NewEvent(runID, "ZeroShotPolicy", callback.EventLLMStart, map[string]any{"prompt": rendered}))

	output, err := p.model.Complete(ctx, rendered, p.stop)
	if err != nil {
		p.logger.Error("model call failed", "error", err)
		p.emit(callback.NewEvent(runID, "ZeroShotPolicy", callback.EventError, map[string]any{"error": err.Error()}))
		return nil, fmt.Errorf("zero-shot policy: %w", err)
	}

	p.emit(callback.NewEvent(runID, "ZeroShotPolicy", callback.EventLLMEnd, map[string]any{"output": output}))

	return ParseDecision(output)
}

func (p *ZeroShotPolicy) emit(e callback.Event) {
	if p.verbose {
		p.callbacks.Emit(e)
	}
}
