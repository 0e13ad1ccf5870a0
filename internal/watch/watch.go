// Package watch polls project files for modifications and forwards them to
// the owning projects.
package watch

import (
	"context"
	"time"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/project"
)

// DefaultInterval is the polling period used by Run.
const DefaultInterval = time.Second

// Change is a project file whose modification time changed, or which
// appeared or disappeared.
type Change struct {
	Project string
	Path    string
}

// Watcher compares file modification times between polls.
type Watcher struct {
	fs       filesystem.FileSystem
	projects []*project.Project
	interval time.Duration

	seen     map[string]time.Time
	baseline bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithInterval sets the polling period
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// New creates a watcher over the files of projects.
func New(fs filesystem.FileSystem, projects []*project.Project, opts ...Option) *Watcher {
	w := &Watcher{
		fs:       fs,
		projects: projects,
		interval: DefaultInterval,
		seen:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Poll stats every project file once. The first call only records the
// current state. Changed files are handed to their project, which marks
// itself dirty and notifies its subscribers.
func (w *Watcher) Poll(ctx context.Context) []Change {
	current := make(map[string]time.Time)
	var changes []Change

	for _, p := range w.projects {
		for _, f := range p.Files() {
			var mtime time.Time
			if info, err := w.fs.Stat(f.Path); err == nil {
				mtime = info.ModTime()
			}
			current[f.Path] = mtime

			if !w.baseline {
				continue
			}
			prev, known := w.seen[f.Path]
			if known && prev.Equal(mtime) {
				continue
			}
			if !known && mtime.IsZero() {
				continue
			}
			if p.HandleFileChanged(ctx, f.Path) {
				changes = append(changes, Change{Project: p.Name(), Path: f.Path})
			}
		}
	}

	w.seen = current
	w.baseline = true
	return changes
}

// Run polls until ctx is cancelled, calling notify with every non-empty
// batch of changes. notify runs on the polling goroutine.
func (w *Watcher) Run(ctx context.Context, notify func([]Change)) error {
	logger := ctxlog.FromContext(ctx)

	w.Poll(ctx)
	logger.Debug("watching project files", "projects", len(w.projects), "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changes := w.Poll(ctx); len(changes) > 0 {
				logger.Debug("files changed", "count", len(changes))
				notify(changes)
			}
		}
	}
}
