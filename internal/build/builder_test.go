package build

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/stretchr/testify/require"
)

func TestBuild_SingleProjectUpToDate(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")
	f.fs.Touch(p.OutputFile())

	rec := progress.NewRecorder()
	result, err := NewBuilder().Build(context.Background(), p, false, rec)
	require.NoError(t, err)
	require.Equal(t, 0, result.BuiltCount)
	require.True(t, result.Succeeded())
	require.Empty(t, f.calls())
	require.Empty(t, rec.Calls)
}

func TestBuild_SingleProject(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")

	rec := progress.NewRecorder()
	result, err := NewBuilder().Build(context.Background(), p, false, rec)
	require.NoError(t, err)

	require.Equal(t, 1, result.BuiltCount)
	require.Equal(t, 0, result.FailedCount)
	require.Equal(t, []string{"api"}, f.calls())
	require.Equal(t, []string{"begin:Building Project: api (Debug) (1)", "end"}, rec.Calls)
	require.Contains(t, rec.Output(), "Performing main compilation...")
	require.Contains(t, rec.Output(), "Build complete -- 0 errors, 0 warnings")
	require.True(t, f.fs.Exists("/ws/api/bin"))
	require.False(t, p.NeedsBuilding())
}

func TestBuild_DependencyOrder(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	f.project("svc", "lib")
	app := f.project("app", "svc", "lib")

	rec := progress.NewRecorder()
	result, err := NewBuilder().Build(context.Background(), app, true, rec)
	require.NoError(t, err)

	require.Equal(t, []string{"lib", "svc", "app"}, f.calls())
	require.Equal(t, 3, result.BuiltCount)
	require.Equal(t, 0, result.FailedCount)
	require.False(t, result.Cancelled)
	require.Equal(t, 3, rec.Steps)
	require.Equal(t, "begin: (3)", rec.Calls[0])
	require.Equal(t, "end", rec.Calls[len(rec.Calls)-1])
}

func TestBuild_SecondBuildIsNoop(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	app := f.project("app", "lib")
	b := NewBuilder()

	_, err := b.Build(context.Background(), app, true, nil)
	require.NoError(t, err)

	result, err := b.Build(context.Background(), app, true, nil)
	require.NoError(t, err)
	require.Equal(t, 0, result.BuiltCount)
	require.Equal(t, []string{"lib", "app"}, f.calls())
}

func TestBuild_RebuildsReferencersOfChangedProject(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	f.project("svc", "lib")
	app := f.project("app", "svc")
	tool := f.project("tool")
	b := NewBuilder()

	_, err := b.Build(context.Background(), app, true, nil)
	require.NoError(t, err)
	_, err = b.Build(context.Background(), tool, true, nil)
	require.NoError(t, err)

	f.fs.Touch("/ws/lib/main.go")
	result, err := b.Build(context.Background(), app, true, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.BuiltCount)
	require.Equal(t, []string{"lib", "svc", "app", "tool", "lib", "svc", "app"}, f.calls())
	require.False(t, tool.NeedsBuilding())
}

func TestBuild_StopsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	lib := f.project("lib")
	f.project("other")
	app := f.project("app", "other", "lib")
	f.compiler.failWith("lib", "undefined: x")
	f.compiler.diagnostics["other"] = []models.Diagnostic{{Severity: models.SeverityWarning, Message: "unused"}}

	rec := progress.NewRecorder()
	result, err := NewBuilder().Build(context.Background(), app, true, rec)
	require.NoError(t, err)

	require.Equal(t, []string{"other", "lib"}, f.calls())
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, 2, result.BuiltCount)
	require.Equal(t, 1, result.ErrorCount())
	require.Equal(t, 1, result.WarningCount())
	require.False(t, result.Succeeded())
	require.Contains(t, rec.Output(), "Build complete -- 1 error, 0 warnings")

	require.Equal(t, project.StateClean, lib.DirtyState(), "a failed attempt still clears the flag")
	require.True(t, app.NeedsBuilding())
}

func TestBuild_OutputDirectoryFailure(t *testing.T) {
	f := newFixture(t)
	lib := f.project("lib")
	app := f.project("app", "lib")
	f.fs.FailMkdir("/ws/lib/bin", errors.New("read-only file system"))

	result, err := NewBuilder().Build(context.Background(), app, true, nil)
	require.ErrorIs(t, err, ErrOutputDirectory)
	require.Contains(t, err.Error(), "failed to build lib")
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, 0, result.BuiltCount)
	require.Empty(t, f.calls())
	require.Equal(t, project.StateDirty, lib.DirtyState())
}

func TestBuild_ConfigurationError(t *testing.T) {
	f := newFixture(t)
	p := project.New(f.fs, "bare", "/ws/bare/project.hcl", project.WithCompiler(f.compiler))

	result, err := NewBuilder().Build(context.Background(), p, false, nil)
	require.ErrorIs(t, err, project.ErrNoActiveConfiguration)
	require.Equal(t, 1, result.FailedCount)
	require.Empty(t, f.calls())
}

func TestBuild_CompilerError(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")
	f.compiler.errs["api"] = errBoom

	_, err := NewBuilder().Build(context.Background(), p, false, nil)
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, project.StateDirty, p.DirtyState())
}

func TestBuild_Cancellation(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	f.project("svc", "lib")
	app := f.project("app", "svc")

	rec := progress.NewRecorder()
	rec.CancelAfterSteps = 1

	result, err := NewBuilder().Build(context.Background(), app, true, rec)
	require.NoError(t, err)
	require.True(t, result.Cancelled)
	require.Equal(t, 0, result.FailedCount)
	require.Equal(t, 1, result.BuiltCount)
	require.Equal(t, []string{"lib"}, f.calls())
}

func TestBuild_CycleBuildsEachOnce(t *testing.T) {
	f := newFixture(t)
	a := f.project("A", "B")
	f.project("B", "A")

	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("debug", "text", &buf))

	result, err := NewBuilder().Build(ctx, a, true, nil)
	require.NoError(t, err)
	require.Equal(t, 2, result.BuiltCount)
	require.Equal(t, []string{"A", "B"}, f.calls())
	require.Contains(t, buf.String(), "reference cycle detected")
}

func TestBuild_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	app := f.project("app", "lib")
	f.compiler.failWith("app", "broken")

	var got []string
	for _, kind := range []events.Kind{events.BuildStarted, events.BuildFinished, events.BuildFailed} {
		f.bus.Subscribe(kind, func(e events.Event) error {
			got = append(got, string(e.Kind)+":"+e.Project)
			return errors.New("handler errors are only logged")
		})
	}

	result, err := NewBuilder().Build(context.Background(), app, true, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, []string{
		"build-started:lib",
		"build-finished:lib",
		"build-started:app",
		"build-failed:app",
	}, got)
}

func TestBuild_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	app := f.project("app", "lib")
	f.compiler.failWith("app", "broken")

	clock := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	history := &memoryHistory{err: errors.New("disk full")}

	_, err := NewBuilder(WithHistory(history), WithClock(now)).Build(context.Background(), app, true, nil)
	require.NoError(t, err)

	require.Len(t, history.records, 2)
	require.Equal(t, "lib", history.records[0].Project)
	require.Equal(t, "Debug", history.records[0].Configuration)
	require.True(t, history.records[0].Succeeded)
	require.Equal(t, time.Second, history.records[0].Duration)
	require.Equal(t, "app", history.records[1].Project)
	require.False(t, history.records[1].Succeeded)
	require.Equal(t, 1, history.records[1].Errors)
}

func TestBuild_CopiesReferencesAfterSuccess(t *testing.T) {
	f := newFixture(t)
	f.project("lib")
	app := f.project("app", "lib")

	_, err := NewBuilder().Build(context.Background(), app, true, nil)
	require.NoError(t, err)

	require.True(t, f.fs.Exists("/ws/app/bin/lib"))
}

func TestClean(t *testing.T) {
	f := newFixture(t)
	lib := f.project("lib")
	app := f.project("app", "lib")
	b := NewBuilder()

	_, err := b.Build(context.Background(), app, true, nil)
	require.NoError(t, err)

	rec := progress.NewRecorder()
	require.NoError(t, b.Clean(context.Background(), app, true, rec))
	require.False(t, f.fs.Exists(lib.OutputFile()))
	require.False(t, f.fs.Exists(app.OutputFile()))
	require.False(t, f.fs.Exists("/ws/app/bin/lib"))
	require.True(t, app.NeedsBuilding())
	require.Contains(t, rec.Output(), "Cleaned lib")
	require.Equal(t, 2, rec.Steps)
}
