// Package model defines the minimal text completion interface agents and
// chains drive, together with a deterministic scripted implementation for
// tests and examples. Provider adapters live in subpackages (openai,
// anthropic).
package model

import (
	"context"
	"fmt"
	"sync"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "scripted", etc.
}

// Model is the opaque text completion collaborator driven by policies and
// chains. Implementations receive the fully rendered prompt and optional stop
// sequences that bound generation; they return the raw completion text.
//
// The caller imposes no timeout on an individual call beyond ctx; loop-level
// limits are enforced between iterations by the executor.
type Model interface {
	// Complete generates a completion for prompt, cutting generation at the
	// first occurrence of any stop sequence.
	Complete(ctx context.Context, prompt string, stop []string) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ScriptedModel replays a fixed sequence of canned completions, one per call,
// regardless of the prompt. It records every prompt it receives so tests can
// assert on rendered prompt content.
//
// Safe for concurrent use, though scripted responses are inherently ordered.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []string
	calls     int
	prompts   []string
}

// NewScriptedModel creates a ScriptedModel that returns the given responses in order.
func NewScriptedModel(responses ...string) *ScriptedModel {
	return &ScriptedModel{responses: responses}
}

// Complete implements Model. It fails once the scripted responses are exhausted.
func (m *ScriptedModel) Complete(_ context.Context, prompt string, _ []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.calls >= len(m.responses) {
		return "", fmt.Errorf("scripted model exhausted after %d responses", len(m.responses))
	}

	resp := m.responses[m.calls]
	m.calls++

	return resp, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "scripted"}
}

// Calls returns how many completions have been served.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt received, in call order.
func (m *ScriptedModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
