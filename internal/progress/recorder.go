package progress

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Recorder is a Monitor that remembers every call. It is used by tests and by
// callers that want to inspect what a build reported.
type Recorder struct {
	mu sync.Mutex

	// Calls lists the monitor calls in order, e.g. "begin:Building (1)".
	Calls []string
	// Steps is the total number of steps reported.
	Steps int

	// CancelAfterSteps requests cancellation once Steps reaches it. Zero disables.
	CancelAfterSteps int
	cancelled        bool

	buf bytes.Buffer
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Cancel requests cancellation immediately.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
}

func (r *Recorder) BeginTask(label string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, fmt.Sprintf("begin:%s (%d)", label, total))
}

func (r *Recorder) Step(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps += n
	r.Calls = append(r.Calls, fmt.Sprintf("step:%d", n))
	if r.CancelAfterSteps > 0 && r.Steps >= r.CancelAfterSteps {
		r.cancelled = true
	}
}

func (r *Recorder) EndTask() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, "end")
}

func (r *Recorder) IsCancelRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func (r *Recorder) Log() io.Writer {
	return &lockedWriter{mu: &r.mu, w: &r.buf}
}

// Output returns everything written to Log.
func (r *Recorder) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
