package chain

import (
	"context"
	"fmt"
)

// Chain is any component exposing a fixed set of named input/output variables
// and a single invocation entry point.
//
// Call receives a variable environment that may contain more keys than the
// chain declares; implementations must read only their declared input keys
// and return exactly their declared output keys. Implementations own their
// instrumentation: a chain emits one ChainStart/ChainEnd pair per invocation
// through its configured callback manager when verbose.
type Chain interface {
	// InputKeys returns the names of the variables this chain consumes.
	InputKeys() []string

	// OutputKeys returns the names of the variables this chain produces.
	OutputKeys() []string

	// Call executes the chain against the given variable environment.
	Call(ctx context.Context, inputs map[string]string) (map[string]string, error)
}

// ValidationError reports invalid chain wiring detected at construction time.
// A chain that fails validation is never usable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "chain validation: " + e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Run is the string-in/string-out convenience over Call for chains declaring
// exactly one input and one output variable.
func Run(ctx context.Context, c Chain, input string) (string, error) {
	inputKeys := c.InputKeys()
	outputKeys := c.OutputKeys()

	if len(inputKeys) != 1 {
		return "", fmt.Errorf("chain run: expected exactly one input key, got %d", len(inputKeys))
	}

	if len(outputKeys) != 1 {
		return "", fmt.Errorf("chain run: expected exactly one output key, got %d", len(outputKeys))
	}

	outputs, err := c.Call(ctx, map[string]string{inputKeys[0]: input})
	if err != nil {
		return "", err
	}

	out, ok := outputs[outputKeys[0]]
	if !ok {
		return "", fmt.Errorf("chain run: output key %q missing from result", outputKeys[0])
	}

	return out, nil
}

// checkInputs verifies that every declared input key is present in the
// environment before a chain executes.
func checkInputs(keys []string, inputs map[string]string) error {
	for _, k := range keys {
		if _, ok := inputs[k]; !ok {
			return fmt.Errorf("missing required input key %q", k)
		}
	}
	return nil
}

// selectOutputs extracts exactly the declared output keys from a sub-chain's
// result, guarding against chains that under-deliver.
func selectOutputs(keys []string, outputs map[string]string) (map[string]string, error) {
	selected := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := outputs[k]
		if !ok {
			return nil, fmt.Errorf("chain did not return declared output key %q", k)
		}
		selected[k] = v
	}
	return selected, nil
}
