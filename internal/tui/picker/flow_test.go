package picker

import (
	"testing"

	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/stretchr/testify/require"
)

func newProject(fs filesystem.FileSystem, name string) *project.Project {
	return project.New(fs, name, "/ws/"+name+"/project.hcl",
		project.WithConfigurations(models.DefaultConfigurations()...))
}

func TestProjectOptions_StaleFirst(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	built := newProject(fs, "built")
	fs.AddFile("/ws/built/bin/debug/built", []byte("bin"))
	stale := newProject(fs, "stale")

	opts := projectOptions([]*project.Project{built, stale})
	require.Len(t, opts, 2)
	require.Equal(t, "stale", opts[0].Value)
	require.Equal(t, "stale  (needs build)", opts[0].Key)
	require.Equal(t, "built", opts[1].Value)
	require.Equal(t, "built  (up to date)", opts[1].Key)
}

func TestConfigurationOptions(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	p := newProject(fs, "api")

	opts := configurationOptions(p)
	require.Len(t, opts, 2)
	require.Equal(t, "Debug", opts[0].Value)
	require.Equal(t, "Release", opts[1].Value)
}

func TestRun_SingleChoiceSkipsForms(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	p := project.New(fs, "api", "/ws/api/project.hcl",
		project.WithConfigurations(&models.Configuration{Name: "Only", OutputName: "api"}))

	result, err := NewFlow([]*project.Project{p}).Run()
	require.NoError(t, err)
	require.Equal(t, &Result{Project: "api", Configuration: "Only"}, result)
	require.Contains(t, RenderSelection(result), "api (Only)")
}

func TestRun_NoProjects(t *testing.T) {
	_, err := NewFlow(nil).Run()
	require.Error(t, err)
}
