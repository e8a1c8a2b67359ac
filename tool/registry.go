package tool

import (
	"context"
	"fmt"
	"strings"
)

// Registry is an ordered collection of uniquely named tools.
//
// Order is preserved so that prompt renderings and documentation listings are
// deterministic. Lookup is by exact, case-sensitive name. The Registry holds
// no side-channel state: invoking the same tool twice with the same arguments
// is always safe to repeat.
type Registry struct {
	tools []Tool
	index map[string]Tool
}

// NewRegistry creates a Registry from the given tools in order. Duplicate
// tool names are a construction error.
func NewRegistry(tools ...Tool) (*Registry, error) {
	index := make(map[string]Tool, len(tools))

	for _, t := range tools {
		if _, exists := index[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		index[t.Name()] = t
	}

	return &Registry{tools: tools, index: index}, nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// Lookup resolves a tool by exact name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Describe renders one "name: description" line per tool, in registration
// order, for embedding into model prompts.
func (r *Registry) Describe() string {
	lines := make([]string, len(r.tools))
	for i, t := range r.tools {
		lines[i] = fmt.Sprintf("%s: %s", t.Name(), t.Description())
	}
	return strings.Join(lines, "\n")
}

// Invoke dispatches input to the named tool and returns its observation.
//
// An unknown name fails with *NotFoundError. A declared error from the tool
// itself is caught here and converted into an observation string, so tool
// failures surface to the model as text rather than crashing the run.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	t, ok := r.index[name]
	if !ok {
		return "", &NotFoundError{Name: name}
	}

	observation, err := t.Invoke(ctx, input)
	if err != nil {
		return fmt.Sprintf("tool error: %v", err), nil
	}

	return observation, nil
}
