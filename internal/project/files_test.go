package project

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAddFile(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")
	got := f.record(events.FileAdded, events.ProjectModified)

	file, err := p.AddFile("cmd/main.go", models.BuildActionCompile)
	require.NoError(t, err)
	require.Equal(t, "/ws/api/cmd/main.go", file.Path)
	require.Equal(t, "cmd/main.go", file.RelativePath)
	require.Equal(t, StateDirty, p.DirtyState())

	require.Len(t, *got, 2)
	require.Equal(t, events.FileAdded, (*got)[0].Kind)
	require.Equal(t, "api", (*got)[0].Project)
	require.Same(t, file, (*got)[0].File)
	require.Equal(t, events.ProjectModified, (*got)[1].Kind)
}

func TestAddFile_ExistingReturnsEntry(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")

	first, err := p.AddFile("main.go", models.BuildActionCompile)
	require.NoError(t, err)

	got := f.record(events.FileAdded)
	second, err := p.AddFile("/ws/api/main.go", models.BuildActionExclude)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, models.BuildActionCompile, second.BuildAction)
	require.Empty(t, *got)
	require.Len(t, p.Files(), 1)
}

func TestAddFile_HandlerErrorReturned(t *testing.T) {
	f := newFixture(t)
	p := f.project("api")
	boom := errors.New("veto")
	f.bus.Subscribe(events.FileAdded, func(events.Event) error { return boom })

	file, err := p.AddFile("main.go", models.BuildActionCompile)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, file)
	require.True(t, p.IsFileInProject("main.go"), "the mutation is kept")
}

func TestRemoveFile(t *testing.T) {
	f := newFixture(t)
	p := f.project("api", WithFiles(&models.ProjectFile{Path: "main.go"}))
	f.build(p)
	got := f.record(events.FileRemoved)

	require.NoError(t, p.RemoveFile("main.go"))
	require.False(t, p.IsFileInProject("main.go"))
	require.Equal(t, StateDirty, p.DirtyState())
	require.Len(t, *got, 1)

	err := p.RemoveFile("main.go")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestRenameFile(t *testing.T) {
	f := newFixture(t)
	p := f.project("api", WithFiles(&models.ProjectFile{Path: "old.go"}))
	got := f.record(events.FileRenamed)

	require.NoError(t, p.RenameFile("old.go", "new.go"))
	require.False(t, p.IsFileInProject("old.go"))

	file := p.GetProjectFile("new.go")
	require.NotNil(t, file)
	require.Equal(t, "new.go", file.RelativePath)

	require.Len(t, *got, 1)
	require.Equal(t, "/ws/api/old.go", (*got)[0].OldPath)
	require.Equal(t, "/ws/api/new.go", (*got)[0].File.Path)
	require.Equal(t, StateDirty, p.DirtyState())

	require.ErrorIs(t, p.RenameFile("old.go", "x.go"), ErrFileNotFound)
}

func TestSetBuildAction_DoesNotDirty(t *testing.T) {
	f := newFixture(t)
	p := f.project("api", WithFiles(&models.ProjectFile{Path: "main.go"}))
	f.build(p)
	require.False(t, p.NeedsBuilding())
	got := f.record(events.FilePropertyChanged)

	require.NoError(t, p.SetBuildAction("main.go", models.BuildActionExclude))
	require.Equal(t, models.BuildActionExclude, p.GetProjectFile("main.go").BuildAction)
	require.Equal(t, StateClean, p.DirtyState())
	require.Len(t, *got, 1)
}

func TestHandleFileChanged(t *testing.T) {
	f := newFixture(t)
	p := f.project("api", WithFiles(&models.ProjectFile{Path: "main.go"}))
	f.build(p)

	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("debug", "text", &buf))

	seen := 0
	f.bus.Subscribe(events.FileChanged, func(events.Event) error { panic("watcher handler") })
	f.bus.Subscribe(events.FileChanged, func(e events.Event) error {
		seen++
		return nil
	})

	require.False(t, p.HandleFileChanged(ctx, "/ws/api/other.go"))
	require.Equal(t, StateClean, p.DirtyState())

	require.True(t, p.HandleFileChanged(ctx, "/ws/api/main.go"))
	require.Equal(t, StateDirty, p.DirtyState())
	require.Equal(t, 1, seen)
	require.Contains(t, buf.String(), "watcher handler")
}
