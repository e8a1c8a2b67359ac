package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_DeliveryOrder(t *testing.T) {
	var order []string

	first := &namedHandler{name: "first", order: &order}
	second := &namedHandler{name: "second", order: &order}

	manager := NewManager(first, second)
	manager.Emit(NewEvent("run-1", "TestComponent", EventText, nil))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_RoutesByKind(t *testing.T) {
	collector := NewCollectorHandler()
	manager := NewManager(collector)

	kinds := []EventKind{
		EventChainStart, EventChainEnd,
		EventLLMStart, EventLLMEnd,
		EventToolStart, EventToolEnd,
		EventText, EventError,
	}

	for _, kind := range kinds {
		manager.Emit(NewEvent("run-1", "TestComponent", kind, map[string]any{"k": "v"}))
	}

	assert.Equal(t, len(kinds), collector.Total())
	for _, kind := range kinds {
		assert.Equal(t, 1, collector.Count(kind), "kind %s", kind)
	}
}

func TestManager_PanickingHandlerIsIsolated(t *testing.T) {
	collector := NewCollectorHandler()
	manager := NewManager(&panickingHandler{}, collector)

	assert.NotPanics(t, func() {
		manager.Emit(NewEvent("run-1", "TestComponent", EventChainStart, nil))
	})

	// The handler after the panicking one still receives the event.
	assert.Equal(t, 1, collector.Count(EventChainStart))
}

func TestManager_NilManagerDiscards(t *testing.T) {
	var manager *Manager

	assert.NotPanics(t, func() {
		manager.Emit(NewEvent("run-1", "TestComponent", EventText, nil))
	})
}

func TestManager_Register(t *testing.T) {
	manager := NewManager()
	assert.Empty(t, manager.Handlers())

	collector := NewCollectorHandler()
	manager.Register(collector)

	assert.Len(t, manager.Handlers(), 1)

	manager.Emit(NewEvent("run-1", "TestComponent", EventToolStart, nil))
	assert.Equal(t, 1, collector.Count(EventToolStart))
}

func TestResolveVerbosity(t *testing.T) {
	SetDefaultVerbosity(false)
	defer SetDefaultVerbosity(false)

	assert.False(t, ResolveVerbosity(nil))

	SetDefaultVerbosity(true)
	assert.True(t, ResolveVerbosity(nil))

	off := false
	assert.False(t, ResolveVerbosity(&off), "explicit override wins over global default")

	SetDefaultVerbosity(false)
	on := true
	assert.True(t, ResolveVerbosity(&on))
}

func TestNewEvent(t *testing.T) {
	e := NewEvent("run-1", "AgentExecutor", EventChainStart, map[string]any{"input": "x"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, "AgentExecutor", e.Component)
	assert.Equal(t, EventChainStart, e.Kind)
	assert.Equal(t, "x", e.Payload["input"])
	assert.False(t, e.Timestamp.IsZero())

	other := NewEvent("run-1", "AgentExecutor", EventChainStart, nil)
	assert.NotEqual(t, e.ID, other.ID)
}

// namedHandler appends its name on every delivery to verify ordering.
type namedHandler struct {
	NoOpHandler
	name  string
	order *[]string
}

func (h *namedHandler) OnText(Event) { *h.order = append(*h.order, h.name) }

// panickingHandler panics on every chain start.
type panickingHandler struct {
	NoOpHandler
}

func (panickingHandler) OnChainStart(Event) { panic("observer blew up") }
