package callback

import (
	"sync"

	"github.com/hupe1980/agentchain/logging"
)

// LogHandler forwards every event to a logging.Logger.
//
// It is the bundled general purpose observer: chain/LLM/tool transitions log
// at debug level, text at info, errors at error level. Payloads are attached
// as structured attributes.
type LogHandler struct {
	NoOpHandler
	logger logging.Logger
}

// NewLogHandler creates a LogHandler writing to the given logger.
func NewLogHandler(logger logging.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (l *LogHandler) log(msg string, e Event) {
	l.logger.Debug(msg, "run_id", e.RunID, "component", e.Component, "payload", e.Payload)
}

// OnChainStart implements Handler.
func (l *LogHandler) OnChainStart(e Event) { l.log("chain.start", e) }

// OnChainEnd implements Handler.
func (l *LogHandler) OnChainEnd(e Event) { l.log("chain.end", e) }

// OnLLMStart implements Handler.
func (l *LogHandler) OnLLMStart(e Event) { l.log("llm.start", e) }

// OnLLMEnd implements Handler.
func (l *LogHandler) OnLLMEnd(e Event) { l.log("llm.end", e) }

// OnToolStart implements Handler.
func (l *LogHandler) OnToolStart(e Event) { l.log("tool.start", e) }

// OnToolEnd implements Handler.
func (l *LogHandler) OnToolEnd(e Event) { l.log("tool.end", e) }

// OnText implements Handler.
func (l *LogHandler) OnText(e Event) {
	l.logger.Info("text", "run_id", e.RunID, "component", e.Component, "payload", e.Payload)
}

// OnError implements Handler.
func (l *LogHandler) OnError(e Event) {
	l.logger.Error("error", "run_id", e.RunID, "component", e.Component, "payload", e.Payload)
}

// CollectorHandler records every delivered event. It is primarily useful in
// tests and diagnostics to assert on the exact event sequence a run produced.
//
// All methods are safe for concurrent use.
type CollectorHandler struct {
	mu     sync.Mutex
	events []Event
}

// NewCollectorHandler creates an empty CollectorHandler.
func NewCollectorHandler() *CollectorHandler {
	return &CollectorHandler{}
}

func (c *CollectorHandler) record(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// OnChainStart implements Handler.
func (c *CollectorHandler) OnChainStart(e Event) { c.record(e) }

// OnChainEnd implements Handler.
func (c *CollectorHandler) OnChainEnd(e Event) { c.record(e) }

// OnLLMStart implements Handler.
func (c *CollectorHandler) OnLLMStart(e Event) { c.record(e) }

// OnLLMEnd implements Handler.
func (c *CollectorHandler) OnLLMEnd(e Event) { c.record(e) }

// OnToolStart implements Handler.
func (c *CollectorHandler) OnToolStart(e Event) { c.record(e) }

// OnToolEnd implements Handler.
func (c *CollectorHandler) OnToolEnd(e Event) { c.record(e) }

// OnText implements Handler.
func (c *CollectorHandler) OnText(e Event) { c.record(e) }

// OnError implements Handler.
func (c *CollectorHandler) OnError(e Event) { c.record(e) }

// Events returns a copy of all recorded events in delivery order.
func (c *CollectorHandler) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Count returns how many events of the given kind were recorded.
func (c *CollectorHandler) Count(kind EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Total returns the total number of recorded events.
func (c *CollectorHandler) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Reset discards all recorded events.
func (c *CollectorHandler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
