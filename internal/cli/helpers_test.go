package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

const testWorkspaceRoot = "/test-workspace"

// fakeCompiler writes the project output, or reports the configured error.
type fakeCompiler struct {
	fs     *filesystem.MockFileSystem
	errors map[string]string

	mu    sync.Mutex
	calls []string
}

func newFakeCompiler(fs *filesystem.MockFileSystem) *fakeCompiler {
	return &fakeCompiler{fs: fs, errors: map[string]string{}}
}

func (c *fakeCompiler) Compile(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.CompilerResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, p.Name())
	c.mu.Unlock()

	result := &models.CompilerResult{}
	if msg, ok := c.errors[p.Name()]; ok {
		result.Add(models.Diagnostic{File: "main.go", Line: 3, Column: 2, Severity: models.SeverityError, Message: msg})
		return result, nil
	}
	c.fs.Touch(p.OutputFile())
	return result, nil
}

func (c *fakeCompiler) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func buildFS(t *testing.T, setup func(*workspace.WorkspaceBuilder)) *filesystem.MockFileSystem {
	t.Helper()

	wb := workspace.NewWorkspaceBuilder(testWorkspaceRoot)
	if setup != nil {
		setup(wb)
	}
	return wb.Build()
}

// apiAndShared is a workspace where api references shared.
func apiAndShared(wb *workspace.WorkspaceBuilder) {
	wb.AddProject("shared", "libs/shared", "github.com/example/shared")
	wb.AddProject("api", "apps/api", "github.com/example/api")
	wb.AddReference("api", "shared")
}

// runCLI executes the root command and returns what it printed to stdout.
// Build history goes to a temporary directory.
func runCLI(t *testing.T, fs filesystem.FileSystem, c project.Compiler, args ...string) (string, error) {
	t.Helper()
	return runCLIWithStateDir(t, fs, c, t.TempDir(), args...)
}

func runCLIWithStateDir(t *testing.T, fs filesystem.FileSystem, c project.Compiler, stateDir string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand(fs, workspace.WithCompiler(c))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--state-dir", stateDir}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func loadWorkspace(t *testing.T, fs filesystem.FileSystem, options ...workspace.Option) *workspace.Workspace {
	t.Helper()

	ws := workspace.New(fs, options...)
	require.NoError(t, ws.Detect())
	t.Cleanup(ws.Close)
	return ws
}
