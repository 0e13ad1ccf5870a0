package progress

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jakoblorz/go-combine/internal/tui"
)

// ConsoleMonitor prints progress to a terminal. Cancellation follows ctx.
type ConsoleMonitor struct {
	ctx context.Context
	out io.Writer

	mu    sync.Mutex
	tasks []task
}

type task struct {
	label string
	total int
	done  int
}

// NewConsoleMonitor creates a monitor writing to out.
func NewConsoleMonitor(ctx context.Context, out io.Writer) *ConsoleMonitor {
	return &ConsoleMonitor{ctx: ctx, out: out}
}

func (m *ConsoleMonitor) BeginTask(label string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, task{label: label, total: total})
	if label != "" {
		fmt.Fprintln(m.out, tui.HeaderStyle.Render(label))
	}
}

func (m *ConsoleMonitor) Step(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tasks) == 0 {
		return
	}
	t := &m.tasks[len(m.tasks)-1]
	t.done += n
	if t.label == "" && t.total > 1 {
		fmt.Fprintln(m.out, tui.SubtleStyle.Render(fmt.Sprintf("[%d/%d]", t.done, t.total)))
	}
}

func (m *ConsoleMonitor) EndTask() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tasks) == 0 {
		return
	}
	m.tasks = m.tasks[:len(m.tasks)-1]
}

func (m *ConsoleMonitor) IsCancelRequested() bool {
	return m.ctx.Err() != nil
}

func (m *ConsoleMonitor) Log() io.Writer {
	return m.out
}
