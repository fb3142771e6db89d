// Package diag collects advisory diagnostics raised while canonicalizing a
// report. Diagnostics never abort a build; they are logged and returned to
// the caller alongside the (possibly partial) result.
package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/errors"
)

// Severity grades a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one advisory message about the input.
type Diagnostic struct {
	Severity Severity
	Code     errors.Code
	Message  string
	NodeID   int  // raw node id the message refers to
	HasNode  bool // false when the message is not tied to a node
}

func (d Diagnostic) String() string {
	if d.HasNode {
		return fmt.Sprintf("%s %s (node %d): %s", d.Severity, d.Code, d.NodeID, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// Collector accumulates diagnostics and mirrors them to a logger.
// A nil *Collector discards everything.
type Collector struct {
	mu     sync.Mutex
	logger *log.Logger
	items  []Diagnostic
}

// NewCollector returns a collector that logs to logger. A nil logger
// disables logging but diagnostics are still recorded.
func NewCollector(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{logger: logger}
}

// Add records d.
func (c *Collector) Add(d Diagnostic) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	kv := []any{"code", d.Code}
	if d.HasNode {
		kv = append(kv, "node", d.NodeID)
	}
	if d.Severity == Error {
		c.logger.Error(d.Message, kv...)
		return
	}
	c.logger.Warn(d.Message, kv...)
}

// Warnf records a warning about node id.
func (c *Collector) Warnf(code errors.Code, id int, format string, args ...any) {
	c.Add(Diagnostic{Severity: Warning, Code: code, NodeID: id, HasNode: true, Message: fmt.Sprintf(format, args...)})
}

// Reportf records a warning that is not tied to a node.
func (c *Collector) Reportf(code errors.Code, format string, args ...any) {
	c.Add(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Fail records err as an error diagnostic. The error's code is kept when it
// carries one.
func (c *Collector) Fail(err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	c.Add(Diagnostic{Severity: Error, Code: code, Message: errors.UserMessage(err)})
}

// Items returns a copy of the recorded diagnostics in order.
func (c *Collector) Items() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Count returns how many diagnostics carry code.
func (c *Collector) Count(code errors.Code) int {
	n := 0
	for _, d := range c.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Items() {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
