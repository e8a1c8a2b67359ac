// Package tool implements the tool calling subsystem that lets agents invoke
// named external capabilities (APIs, computations, side-effects) with a plain
// string argument and consistent error handling.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with a Registry and resolved by exact, case-sensitive
// name when the agent decides to dispatch to them. The contract is
// deliberately narrow: one string in, one string out.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Be safe to invoke repeatedly with the same arguments (the registry
//     imposes no retry or memoization)
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool within a registry.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is embedded into the model prompt to help the model decide when to
	// use the tool.
	Description() string

	// Invoke executes the tool with the given input string. A returned error
	// is converted into an observation string by the registry rather than
	// crashing the run.
	Invoke(ctx context.Context, input string) (string, error)
}

// FuncTool adapts a plain Go function into a Tool.
//
// A FuncTool has no internal mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FuncTool struct {
	name        string
	description string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewFuncTool constructs a FuncTool from a name, description and function.
//
// Example:
//
//	search := tool.NewFuncTool(
//	    "Search",
//	    "Useful for searching the web",
//	    func(ctx context.Context, input string) (string, error) {
//	        return lookup(ctx, input)
//	    },
//	)
func NewFuncTool(name, description string, fn func(ctx context.Context, input string) (string, error)) *FuncTool {
	return &FuncTool{name: name, description: description, fn: fn}
}

// Name returns the unique tool name used in action parsing and routing.
func (t *FuncTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FuncTool) Description() string { return t.description }

// Invoke calls the wrapped function.
func (t *FuncTool) Invoke(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

// NotFoundError reports a dispatch to a tool name absent from the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found in registry", e.Name)
}
