package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/stretchr/testify/require"
)

func newProject(fs filesystem.FileSystem, bus *events.Bus, name string, files ...string) *project.Project {
	var pf []*models.ProjectFile
	for _, f := range files {
		pf = append(pf, &models.ProjectFile{Path: f})
	}
	return project.New(fs, name, "/ws/"+name+"/project.hcl",
		project.WithBus(bus),
		project.WithFiles(pf...),
		project.WithConfigurations(&models.Configuration{Name: "Debug", OutputDirectory: "bin", OutputName: name}),
	)
}

func TestPoll(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	bus := events.NewBus()
	fs.AddFile("/ws/api/main.go", nil)
	fs.AddFile("/ws/api/util.go", nil)
	api := newProject(fs, bus, "api", "main.go", "util.go", "later.go")
	fs.Touch("/ws/api/bin/api")
	api.MarkBuilt()

	var published []string
	bus.Subscribe(events.FileChanged, func(e events.Event) error {
		published = append(published, e.File.RelativePath)
		return errors.New("ignored by the watcher")
	})

	w := New(fs, []*project.Project{api})
	require.Empty(t, w.Poll(context.Background()), "first poll records the baseline")
	require.Empty(t, w.Poll(context.Background()))
	require.Equal(t, project.StateClean, api.DirtyState())

	fs.Touch("/ws/api/util.go")
	fs.AddFile("/ws/api/later.go", nil)
	require.NoError(t, fs.Remove("/ws/api/main.go"))

	changes := w.Poll(context.Background())
	require.ElementsMatch(t, []Change{
		{Project: "api", Path: "/ws/api/main.go"},
		{Project: "api", Path: "/ws/api/util.go"},
		{Project: "api", Path: "/ws/api/later.go"},
	}, changes)
	require.ElementsMatch(t, []string{"main.go", "util.go", "later.go"}, published)
	require.Equal(t, project.StateDirty, api.DirtyState())

	require.Empty(t, w.Poll(context.Background()))
}

func TestRun(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/ws/api/main.go", nil)
	api := newProject(fs, nil, "api", "main.go")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []Change, 1)
	done := make(chan error, 1)
	w := New(fs, []*project.Project{api}, WithInterval(5*time.Millisecond))
	go func() {
		done <- w.Run(ctx, func(c []Change) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		fs.Touch("/ws/api/main.go")
		select {
		case c := <-got:
			return len(c) == 1 && c[0].Path == "/ws/api/main.go"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
