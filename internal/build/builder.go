package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
)

// ErrOutputDirectory is returned when the output directory of a project
// cannot be created. It is fatal for the project being built.
var ErrOutputDirectory = errors.New("can't create project output directory")

// HistoryRecorder stores one record per project build attempt.
type HistoryRecorder interface {
	Record(ctx context.Context, record models.BuildRecord) error
}

// Builder builds projects and their references in dependency order.
type Builder struct {
	history HistoryRecorder
	now     func() time.Time
}

// Option configures a Builder
type Option func(*Builder)

// WithHistory records every build attempt in h
func WithHistory(h HistoryRecorder) Option {
	return func(b *Builder) { b.history = h }
}

// WithClock replaces time.Now for build timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build builds p. With includeReferences, every referenced project that
// needs building is built first, in dependency order, stopping at the first
// project that reports compilation errors or when monitor requests
// cancellation.
//
// Compilation errors are reported in the result. A returned error means a
// project could not be built at all; the partial result is returned with it.
func (b *Builder) Build(ctx context.Context, p *project.Project, includeReferences bool, monitor progress.Monitor) (*models.BuildResult, error) {
	monitor = progress.OrNull(monitor)

	if !includeReferences {
		return b.buildProject(ctx, p, monitor)
	}

	logger := ctxlog.FromContext(ctx)

	closure := ComputeBuildClosure(p)
	sorted, cyclic := TopologicalSort(closure)
	if len(cyclic) > 0 {
		logger.Warn("reference cycle detected, building in declaration order", "projects", Names(cyclic))
	}
	logger.Debug("build order computed", "root", p.Name(), "projects", Names(sorted))

	result := models.NewBuildResult()

	monitor.BeginTask("", len(sorted))
	defer monitor.EndTask()

	for _, rp := range sorted {
		if monitor.IsCancelRequested() {
			logger.Info("build cancelled", "next", rp.Name())
			result.Cancelled = true
			break
		}

		if rp.NeedsBuilding() {
			res, err := b.buildProject(ctx, rp, monitor)
			result.Merge(res)
			if err != nil {
				result.FailedCount = 1
				return result, err
			}
			if res.ErrorCount() > 0 {
				result.FailedCount = 1
				break
			}
		}
		monitor.Step(1)
	}

	return result, nil
}

// buildProject builds a single project if it needs building.
func (b *Builder) buildProject(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.BuildResult, error) {
	result := models.NewBuildResult()
	if !p.NeedsBuilding() {
		return result, nil
	}

	cfg, err := p.ResolveConfiguration()
	if err != nil {
		result.FailedCount = 1
		return result, fmt.Errorf("failed to build %s: %w", p.Name(), err)
	}

	logger := ctxlog.FromContext(ctx).With("project", p.Name(), "configuration", cfg.Name)
	started := b.now()

	monitor.BeginTask(fmt.Sprintf("Building Project: %s (%s)", p.Name(), cfg.Name), 1)
	defer monitor.EndTask()

	b.publish(ctx, p, events.Event{Kind: events.BuildStarted})

	if err := p.FileSystem().MkdirAll(cfg.OutputDirectory, 0755); err != nil {
		err = fmt.Errorf("%w %s: %w", ErrOutputDirectory, cfg.OutputDirectory, err)
		b.finish(ctx, p, cfg.Name, started, result, err)
		result.FailedCount = 1
		return result, fmt.Errorf("failed to build %s: %w", p.Name(), err)
	}

	fmt.Fprintln(monitor.Log(), "Performing main compilation...")
	logger.Debug("compiling", "output", cfg.OutputFile)

	cr, err := compile(ctx, p, monitor)
	if err != nil {
		b.finish(ctx, p, cfg.Name, started, result, err)
		result.FailedCount = 1
		return result, fmt.Errorf("failed to build %s: %w", p.Name(), err)
	}
	p.MarkBuilt()

	result.AddCompilerResult(cr)
	result.BuiltCount = 1
	if result.ErrorCount() > 0 {
		result.FailedCount = 1
	}

	fmt.Fprintf(monitor.Log(), "Build complete -- %s, %s\n",
		plural(result.ErrorCount(), "error"),
		plural(result.WarningCount(), "warning"))

	if result.Succeeded() {
		if n := p.CopyReferencesToOutputPath(ctx, false); n > 0 {
			logger.Debug("copied references", "files", n)
		}
	}

	b.finish(ctx, p, cfg.Name, started, result, nil)
	return result, nil
}

func compile(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.CompilerResult, error) {
	c := p.Compiler()
	if c == nil {
		return &models.CompilerResult{}, nil
	}
	cr, err := c.Compile(ctx, p, monitor)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		cr = &models.CompilerResult{}
	}
	return cr, nil
}

// finish publishes the outcome of a build attempt and records it.
func (b *Builder) finish(ctx context.Context, p *project.Project, configuration string, started time.Time, result *models.BuildResult, buildErr error) {
	logger := ctxlog.FromContext(ctx)

	succeeded := buildErr == nil && result.ErrorCount() == 0
	if succeeded {
		b.publish(ctx, p, events.Event{Kind: events.BuildFinished, Result: result})
	} else {
		b.publish(ctx, p, events.Event{Kind: events.BuildFailed, Result: result, Err: buildErr})
	}

	if b.history == nil {
		return
	}
	record := models.BuildRecord{
		Project:       p.Name(),
		Configuration: configuration,
		StartedAt:     started,
		Duration:      b.now().Sub(started),
		Errors:        result.ErrorCount(),
		Warnings:      result.WarningCount(),
		Succeeded:     succeeded,
	}
	if buildErr != nil && record.Errors == 0 {
		record.Errors = 1
	}
	if err := b.history.Record(ctx, record); err != nil {
		logger.Warn("failed to record build history", "project", p.Name(), "error", err)
	}
}

// publish delivers build events. Handler errors never fail a build.
func (b *Builder) publish(ctx context.Context, p *project.Project, e events.Event) {
	e.Project = p.Name()
	if err := p.Bus().Publish(e); err != nil {
		ctxlog.FromContext(ctx).Warn("build event handler failed", "project", e.Project, "kind", string(e.Kind), "error", err)
	}
}

// Clean removes the build output of p, and with includeReferences of every
// project it references.
func (b *Builder) Clean(ctx context.Context, p *project.Project, includeReferences bool, monitor progress.Monitor) error {
	monitor = progress.OrNull(monitor)

	projects := []*project.Project{p}
	if includeReferences {
		projects, _ = TopologicalSort(CollectReferences(p))
	}

	monitor.BeginTask("Cleaning", len(projects))
	defer monitor.EndTask()

	for _, rp := range projects {
		if monitor.IsCancelRequested() {
			return nil
		}
		if err := rp.Clean(ctx); err != nil {
			return fmt.Errorf("failed to clean %s: %w", rp.Name(), err)
		}
		fmt.Fprintf(monitor.Log(), "Cleaned %s\n", rp.Name())
		monitor.Step(1)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
