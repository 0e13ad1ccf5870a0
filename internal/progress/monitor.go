// Package progress reports build progress and carries cancellation requests
// from the user to the build orchestrator.
package progress

import (
	"io"
)

// Monitor receives progress from a running build.
//
// Cancellation is cooperative: the orchestrator polls IsCancelRequested
// between projects and never interrupts a project that already started.
type Monitor interface {
	// BeginTask starts a task with the given number of steps. An empty
	// label keeps the current heading.
	BeginTask(label string, total int)
	// Step advances the current task by n steps.
	Step(n int)
	// EndTask finishes the innermost task.
	EndTask()
	// IsCancelRequested reports whether the build should stop.
	IsCancelRequested() bool
	// Log is where build output and compiler messages are written.
	Log() io.Writer
}

// NullMonitor discards progress and never requests cancellation.
type NullMonitor struct{}

// NewNullMonitor creates a NullMonitor
func NewNullMonitor() *NullMonitor {
	return &NullMonitor{}
}

func (NullMonitor) BeginTask(string, int)   {}
func (NullMonitor) Step(int)                {}
func (NullMonitor) EndTask()                {}
func (NullMonitor) IsCancelRequested() bool { return false }
func (NullMonitor) Log() io.Writer          { return io.Discard }

// OrNull returns m, or a NullMonitor when m is nil.
func OrNull(m Monitor) Monitor {
	if m == nil {
		return NullMonitor{}
	}
	return m
}
