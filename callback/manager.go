package callback

import (
	"sync/atomic"
)

// Handler defines the interface for lifecycle event observers.
//
// Handlers are invoked synchronously on the emitting goroutine and should
// therefore return quickly. They must not be assumed to be side-effect free,
// but any error handling is their own responsibility: a panicking handler is
// recovered by the Manager and never aborts the emitting component.
//
// Embed NoOpHandler to implement only the methods of interest.
type Handler interface {
	// OnChainStart is called when a chain or executor run begins.
	OnChainStart(e Event)

	// OnChainEnd is called when a chain or executor run completes.
	OnChainEnd(e Event)

	// OnLLMStart is called before each model completion call.
	OnLLMStart(e Event)

	// OnLLMEnd is called after each model completion call returns.
	OnLLMEnd(e Event)

	// OnToolStart is called before each tool dispatch.
	OnToolStart(e Event)

	// OnToolEnd is called after each tool dispatch returns.
	OnToolEnd(e Event)

	// OnText is called for free-form progress text.
	OnText(e Event)

	// OnError is called when a component is about to propagate a failure.
	OnError(e Event)
}

// NoOpHandler implements Handler with empty reactions. Embed it in concrete
// handlers that only care about a subset of event kinds.
type NoOpHandler struct{}

// OnChainStart implements Handler.
func (NoOpHandler) OnChainStart(Event) {}

// OnChainEnd implements Handler.
func (NoOpHandler) OnChainEnd(Event) {}

// OnLLMStart implements Handler.
func (NoOpHandler) OnLLMStart(Event) {}

// OnLLMEnd implements Handler.
func (NoOpHandler) OnLLMEnd(Event) {}

// OnToolStart implements Handler.
func (NoOpHandler) OnToolStart(Event) {}

// OnToolEnd implements Handler.
func (NoOpHandler) OnToolEnd(Event) {}

// OnText implements Handler.
func (NoOpHandler) OnText(Event) {}

// OnError implements Handler.
func (NoOpHandler) OnError(Event) {}

// Manager delivers events to an ordered list of handlers.
//
// Delivery is synchronous and blocking: handlers run in registration order on
// the emitting goroutine, one event at a time. Every handler invocation is
// wrapped in a recover boundary, so observer failures are swallowed and do
// not abort the emitting component's operation (fire-and-forget).
//
// Thread Safety:
// The handler list is expected to be mutated only at setup time. Once runs
// are in flight the Manager is treated as read-only and is safe for
// concurrent emission from multiple runs.
type Manager struct {
	handlers []Handler
}

// NewManager creates a Manager with the given handlers in delivery order.
func NewManager(handlers ...Handler) *Manager {
	return &Manager{handlers: handlers}
}

// Register appends a handler to the delivery list. Call before starting runs;
// the list is not synchronized against concurrent emission.
func (m *Manager) Register(h Handler) {
	m.handlers = append(m.handlers, h)
}

// Handlers returns a shallow copy of the registered handlers for inspection.
func (m *Manager) Handlers() []Handler {
	out := make([]Handler, len(m.handlers))
	copy(out, m.handlers)
	return out
}

// Emit routes the event to every handler in registration order. A nil Manager
// discards all events, so optional instrumentation needs no guards at call sites.
func (m *Manager) Emit(e Event) {
	if m == nil {
		return
	}

	for _, h := range m.handlers {
		deliver(h, e)
	}
}

// deliver dispatches one event to one handler inside a recover boundary.
func deliver(h Handler, e Event) {
	defer func() {
		_ = recover() // observer failures never surface to the emitter
	}()

	switch e.Kind {
	case EventChainStart:
		h.OnChainStart(e)
	case EventChainEnd:
		h.OnChainEnd(e)
	case EventLLMStart:
		h.OnLLMStart(e)
	case EventLLMEnd:
		h.OnLLMEnd(e)
	case EventToolStart:
		h.OnToolStart(e)
	case EventToolEnd:
		h.OnToolEnd(e)
	case EventText:
		h.OnText(e)
	case EventError:
		h.OnError(e)
	}
}

// defaultVerbosity is the process-wide verbosity fallback. It is intended to
// be set once at startup, before components are constructed.
var defaultVerbosity atomic.Bool

// SetDefaultVerbosity sets the process-wide verbosity default used when a
// component is constructed without an explicit override.
func SetDefaultVerbosity(v bool) { defaultVerbosity.Store(v) }

// DefaultVerbosity returns the process-wide verbosity default.
func DefaultVerbosity() bool { return defaultVerbosity.Load() }

// ResolveVerbosity resolves the effective verbosity for a component: an
// explicit override wins, otherwise the process-wide default governs. The
// result is stored as a plain bool at construction so the emit path never
// consults global state.
func ResolveVerbosity(override *bool) bool {
	if override != nil {
		return *override
	}
	return DefaultVerbosity()
}
