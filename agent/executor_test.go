package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchain/callback"
	"github.com/hupe1980/agentchain/chain"
	"github.com/hupe1980/agentchain/model"
	"github.com/hupe1980/agentchain/tool"
)

// newTestExecutor wires a scripted model into a zero-shot policy and executor
// sharing one callback manager, mirroring how the facade assembles them.
func newTestExecutor(t *testing.T, m *model.ScriptedModel, manager *callback.Manager, verbose bool, optFns ...func(o *ExecutorOptions)) *Executor {
	t.Helper()

	registry := testRegistry(t)

	policy, err := NewZeroShotPolicy(m, registry, func(o *ZeroShotPolicyOptions) {
		o.Callbacks = manager
		o.Verbose = &verbose
	})
	require.NoError(t, err)

	opts := append([]func(o *ExecutorOptions){
		WithCallbacks(manager),
		WithVerbose(verbose),
	}, optFns...)

	return NewExecutor(policy, registry, opts...)
}

func TestExecutor_BadActionThenFinalAnswer(t *testing.T) {
	m := model.NewScriptedModel(
		"I'm turning evil\nAction: BadAction\nAction Input: misalignment",
		"Oh well\nAction: Final Answer\nAction Input: curses foiled again",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	output, err := executor.Run(context.Background(), "when was the framework released")
	require.NoError(t, err)

	assert.Equal(t, "curses foiled again", output)
	assert.Equal(t, 2, m.Calls(), "exactly two policy decisions")

	// The unknown tool surfaced to the model as an observation.
	prompts := m.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "BadAction is not a valid tool, try another one.")
}

func TestExecutor_ToolDispatchFeedsScratchpad(t *testing.T) {
	m := model.NewScriptedModel(
		"Thought\nAction: Search\nAction Input: framework release",
		"Action: Final Answer\nAction Input: done",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "done", output)

	prompts := m.Prompts()
	require.Len(t, prompts, 2)
	// Echo tool returns its input; it must appear as an observation.
	assert.Contains(t, prompts[1], "Observation: framework release")
}

func TestExecutor_ZeroMaxIterations(t *testing.T) {
	m := model.NewScriptedModel("Action: Final Answer\nAction Input: never reached")

	collector := callback.NewCollectorHandler()
	executor := newTestExecutor(t, m, callback.NewManager(collector), true, WithMaxIterations(0))

	output, err := executor.Run(context.Background(), "when was the framework released")
	require.NoError(t, err)

	assert.Equal(t, StoppedMaxIterations, output)
	assert.Equal(t, 0, m.Calls(), "no model invocation before the limit check")
	assert.Equal(t, 0, collector.Count(callback.EventLLMStart))
	assert.Equal(t, 0, collector.Count(callback.EventToolStart))
}

func TestExecutor_MaxIterationsReached(t *testing.T) {
	m := model.NewScriptedModel(
		"Action: Search\nAction Input: one",
		"Action: Search\nAction Input: two",
		"Action: Search\nAction Input: three",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false, WithMaxIterations(2))

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StoppedMaxIterations, output)
	assert.Equal(t, 2, m.Calls(), "stopping condition is checked before consulting the policy again")
}

func TestExecutor_MaxExecutionTime(t *testing.T) {
	m := model.NewScriptedModel(
		"Action: Search\nAction Input: slow",
		"Action: Final Answer\nAction Input: never reached",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false, WithMaxExecutionTime(time.Nanosecond))

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StoppedMaxExecutionTime, output)
	assert.Equal(t, 1, m.Calls(), "limit is checked between iterations, not preemptively")
}

func TestExecutor_ParseErrorConsumesIterationSlot(t *testing.T) {
	m := model.NewScriptedModel(
		"gibberish with no action",
		"more gibberish",
		"even more gibberish",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false, WithMaxIterations(2))

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StoppedMaxIterations, output)
	assert.Equal(t, 2, m.Calls(), "each parse failure consumes one iteration slot")
}

func TestExecutor_ParseErrorRecovery(t *testing.T) {
	m := model.NewScriptedModel(
		"gibberish with no action",
		"Action: Final Answer\nAction Input: recovered",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "recovered", output)

	// The corrective observation instructing the expected format reached the model.
	prompts := m.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Invalid format.")
}

func TestExecutor_ModelErrorPropagates(t *testing.T) {
	m := model.NewScriptedModel() // exhausted immediately

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	_, err := executor.Run(context.Background(), "q")
	assert.Error(t, err)
}

func TestExecutor_EventCountsVerbose(t *testing.T) {
	m := model.NewScriptedModel(
		"FooBarBaz\nAction: Search\nAction Input: misalignment",
		"Oh well\nAction: Final Answer\nAction Input: curses foiled again",
	)

	collector := callback.NewCollectorHandler()
	executor := newTestExecutor(t, m, callback.NewManager(collector), true)

	output, err := executor.Run(context.Background(), "when was the framework released")
	require.NoError(t, err)
	assert.Equal(t, "curses foiled again", output)

	assert.Equal(t, 1, collector.Count(callback.EventChainStart))
	assert.Equal(t, 1, collector.Count(callback.EventChainEnd))
	assert.Equal(t, 2, collector.Count(callback.EventLLMStart))
	assert.Equal(t, 2, collector.Count(callback.EventLLMEnd))
	assert.Equal(t, 1, collector.Count(callback.EventToolStart))
	assert.Equal(t, 1, collector.Count(callback.EventToolEnd))
	assert.Equal(t, 0, collector.Count(callback.EventError))
}

func TestExecutor_EventCountsNotVerbose(t *testing.T) {
	m := model.NewScriptedModel(
		"FooBarBaz\nAction: Search\nAction Input: misalignment",
		"Oh well\nAction: Final Answer\nAction Input: curses foiled again",
	)

	collector := callback.NewCollectorHandler()
	executor := newTestExecutor(t, m, callback.NewManager(collector), false)

	output, err := executor.Run(context.Background(), "when was the framework released")
	require.NoError(t, err)
	assert.Equal(t, "curses foiled again", output)

	assert.Equal(t, 0, collector.Total())
}

func TestExecutor_GlobalVerbosityDefault(t *testing.T) {
	callback.SetDefaultVerbosity(true)
	defer callback.SetDefaultVerbosity(false)

	m := model.NewScriptedModel(
		"Action: Search\nAction Input: x",
		"Action: Final Answer\nAction Input: y",
	)

	registry := testRegistry(t)
	collector := callback.NewCollectorHandler()
	manager := callback.NewManager(collector)

	// No explicit verbose override anywhere: the global default governs.
	policy, err := NewZeroShotPolicy(m, registry, func(o *ZeroShotPolicyOptions) {
		o.Callbacks = manager
	})
	require.NoError(t, err)

	executor := NewExecutor(policy, registry, WithCallbacks(manager))

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "y", output)

	assert.Equal(t, 1, collector.Count(callback.EventChainStart))
	assert.Equal(t, 2, collector.Count(callback.EventLLMStart))
	assert.Equal(t, 1, collector.Count(callback.EventToolStart))
}

func TestExecutor_LocalOverrideBeatsGlobal(t *testing.T) {
	callback.SetDefaultVerbosity(true)
	defer callback.SetDefaultVerbosity(false)

	m := model.NewScriptedModel(
		"Action: Search\nAction Input: x",
		"Action: Final Answer\nAction Input: y",
	)

	collector := callback.NewCollectorHandler()
	executor := newTestExecutor(t, m, callback.NewManager(collector), false)

	_, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 0, collector.Total(), "explicit per-instance override wins over the global default")
}

func TestExecutor_FailingToolBecomesObservation(t *testing.T) {
	registry, err := tool.NewRegistry(
		tool.NewFuncTool("Flaky", "always fails", func(context.Context, string) (string, error) {
			return "", errors.New("upstream down")
		}),
	)
	require.NoError(t, err)

	m := model.NewScriptedModel(
		"Action: Flaky\nAction Input: x",
		"Action: Final Answer\nAction Input: gave up",
	)

	policy, err := NewZeroShotPolicy(m, registry)
	require.NoError(t, err)

	executor := NewExecutor(policy, registry)

	output, err := executor.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "gave up", output)

	prompts := m.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Observation: tool error: upstream down")
}

func TestExecutor_AsChain(t *testing.T) {
	m := model.NewScriptedModel("Action: Final Answer\nAction Input: composed")

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	assert.Equal(t, []string{"input"}, executor.InputKeys())
	assert.Equal(t, []string{"output"}, executor.OutputKeys())

	output, err := chain.Run(context.Background(), executor, "q")
	require.NoError(t, err)
	assert.Equal(t, "composed", output)
}

func TestExecutor_IndependentRunState(t *testing.T) {
	// Two sequential runs of one executor must not share scratchpad state.
	m := model.NewScriptedModel(
		"Action: Final Answer\nAction Input: first",
		"Action: Final Answer\nAction Input: second",
	)

	executor := newTestExecutor(t, m, callback.NewManager(), false)

	out1, err := executor.Run(context.Background(), "q1")
	require.NoError(t, err)
	out2, err := executor.Run(context.Background(), "q2")
	require.NoError(t, err)

	assert.Equal(t, "first", out1)
	assert.Equal(t, "second", out2)

	prompts := m.Prompts()
	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[1], "first", "fresh scratchpad per run")
	assert.True(t, strings.HasSuffix(prompts[1], "Thought:"), "second run starts with an empty scratchpad")
}
