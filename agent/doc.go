// Package agent implements the model-driven decision loop: a Policy that
// turns the accumulated scratchpad into one decision per iteration, a parser
// that extracts that decision from raw model text, and the Executor that owns
// the loop, the per-run state and the stopping conditions.
//
// The package focuses on three concerns:
//
//  1. Decision parsing ("Action:" / "Action Input:" lines, the "Final Answer"
//     sentinel, ParseError for everything else)
//  2. The stateless-per-call ZeroShotPolicy that prompts a model with the
//     available tools and the rendered scratchpad
//  3. The Executor control loop: dispatching tools, recovering from malformed
//     or unknown actions, and enforcing iteration and wall-clock limits
//
// Design principles:
//   - No hidden global state: callbacks, verbosity and limits are wired
//     explicitly at construction
//   - Per-run state (scratchpad, iteration counter, status) is created at the
//     start of Run and discarded at its end, so one configured Executor can
//     serve concurrent runs
//   - Collaborator failures the loop cannot turn into a formatted observation
//     propagate to the caller of Run
//
// An Executor is itself a chain (input key "input", output key "output") and
// can be composed into the sequential pipelines of the chain package.
package agent
