// Package agentchain provides a high-level façade over the agent execution
// loop and the chain composition layer, enabling rapid construction of
// model-driven tool-using programs. Most applications interact with this
// package by:
//  1. Wrapping their capabilities as tools (tool.NewFuncTool)
//  2. Creating an executor via New() with a model implementation
//  3. Calling Run with the user's input, or composing the executor into the
//     sequential chains of the chain package
//
// The façade delegates the loop to agent.Executor while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a provider-backed model
// (model/openai, model/anthropic), a callback manager and a structured logger.
package agentchain

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentchain/agent"
	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/logging"
	"github.com/hupe1980/agentchain/model"
	"github.com/hupe1980/agentchain/tool"
)

// Options configure the assembled executor.
type Options struct {
	// MaxIterations caps the number of loop iterations. Nil keeps the
	// executor default; zero stops a run before any model call.
	MaxIterations *int

	// MaxExecutionTime caps total wall-clock loop duration.
	MaxExecutionTime *time.Duration

	// Callbacks receives lifecycle events from the executor and its policy
	// when verbose.
	Callbacks *callback.Manager

	// Verbose overrides the process-wide verbosity default for the executor
	// and its policy.
	Verbose *bool

	// Logger used for structured diagnostics by the executor and its policy.
	Logger logging.Logger
}

// New assembles a zero-shot agent executor: the tools become a registry, the
// registry and model become a ZeroShotPolicy, and the policy is wrapped in an
// Executor sharing the same callbacks, verbosity and logger.
func New(m model.Model, tools []tool.Tool, optFns ...func(o *Options)) (*agent.Executor, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	registry, err := tool.NewRegistry(tools...)
	if err != nil {
		return nil, fmt.Errorf("agentchain: %w", err)
	}

	policy, err := agent.NewZeroShotPolicy(m, registry, func(o *agent.ZeroShotPolicyOptions) {
		o.Callbacks = opts.Callbacks
		o.Verbose = opts.Verbose
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})
	if err != nil {
		return nil, fmt.Errorf("agentchain: %w", err)
	}

	var executorOpts []func(o *agent.ExecutorOptions)

	executorOpts = append(executorOpts, agent.WithCallbacks(opts.Callbacks))

	if opts.MaxIterations != nil {
		executorOpts = append(executorOpts, agent.WithMaxIterations(*opts.MaxIterations))
	}

	if opts.MaxExecutionTime != nil {
		executorOpts = append(executorOpts, agent.WithMaxExecutionTime(*opts.MaxExecutionTime))
	}

	if opts.Verbose != nil {
		executorOpts = append(executorOpts, agent.WithVerbose(*opts.Verbose))
	}

	if opts.Logger != nil {
		executorOpts = append(executorOpts, agent.WithLogger(opts.Logger))
	}

	return agent.NewExecutor(policy, registry, executorOpts...), nil
}

// Run assembles an executor via New and runs it once with the given input.
func Run(ctx context.Context, m model.Model, tools []tool.Tool, input string, optFns ...func(o *Options)) (string, error) {
	executor, err := New(m, tools, optFns...)
	if err != nil {
		return "", err
	}

	return executor.Run(ctx, input)
}
