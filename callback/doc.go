// Package callback implements the event notification bus used by executors,
// policies and chains for lifecycle instrumentation.
//
// The Manager holds an ordered list of Handler implementations and delivers
// typed lifecycle events (chain start/end, LLM start/end, tool start/end,
// text, error) to each of them synchronously, in registration order. Handler
// failures, including panics, are swallowed so that instrumentation can
// never abort the emitting component's operation.
//
// Verbosity is resolved once at construction time: each emitting component
// stores a plain bool, computed from an optional per-component override and
// the process-wide default (see SetDefaultVerbosity / ResolveVerbosity).
// There are no implicit global lookups on the emit path.
//
// Usage:
//
//	collector := callback.NewCollectorHandler()
//	manager := callback.NewManager(collector)
//	executor := agent.NewExecutor(policy, registry,
//	    agent.WithCallbacks(manager), agent.WithVerbose(true))
package callback
