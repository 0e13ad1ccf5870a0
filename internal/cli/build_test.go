package cli

import (
	"testing"

	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestBuild_ReferencesFirst(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	out, err := runCLI(t, fs, compiler, "build", "api")
	require.NoError(t, err)

	require.Equal(t, []string{"shared", "api"}, compiler.Calls())
	require.Contains(t, out, "🔨 Building api (Debug)")
	require.Contains(t, out, "✅ Build succeeded: 2 projects built, 0 errors, 0 warnings")
	require.True(t, fs.Exists("/test-workspace/apps/api/bin/debug/api"))
	require.True(t, fs.Exists("/test-workspace/libs/shared/bin/debug/shared"))
}

func TestBuild_SecondRunIsUpToDate(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "api")
	require.NoError(t, err)

	out, err := runCLI(t, fs, compiler, "build", "api")
	require.NoError(t, err)

	require.Equal(t, []string{"shared", "api"}, compiler.Calls())
	require.Contains(t, out, "✅ Build succeeded: 0 projects built, 0 errors, 0 warnings")
}

func TestBuild_StopsAtFirstFailure(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)
	compiler.errors["shared"] = "undefined: Config"

	out, err := runCLI(t, fs, compiler, "build", "api")
	require.Error(t, err)
	require.Contains(t, err.Error(), "build failed with 1 error")

	require.Equal(t, []string{"shared"}, compiler.Calls())
	require.Contains(t, out, "  ❌ main.go:3:2: error: undefined: Config")
	require.Contains(t, out, "❌ Build failed: 1 project built, 1 error, 0 warnings")
	require.False(t, fs.Exists("/test-workspace/apps/api/bin/debug/api"))
}

func TestBuild_NoReferences(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "api", "--no-references")
	require.NoError(t, err)
	require.Equal(t, []string{"api"}, compiler.Calls())
}

func TestBuild_ReleaseConfiguration(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	out, err := runCLI(t, fs, compiler, "build", "shared", "--config", "Release")
	require.NoError(t, err)
	require.Contains(t, out, "🔨 Building shared (Release)")
	require.True(t, fs.Exists("/test-workspace/libs/shared/bin/release/shared"))

	_, err = runCLI(t, fs, compiler, "build", "shared", "--config", "Staging")
	require.Error(t, err)
}

func TestBuild_FromWorkingDirectory(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	fs.SetCurrentDir("/test-workspace/libs/shared")
	compiler := newFakeCompiler(fs)

	out, err := runCLI(t, fs, compiler, "build")
	require.NoError(t, err)
	require.Contains(t, out, "🔨 Building shared (Debug)")
	require.Equal(t, []string{"shared"}, compiler.Calls())
}

func TestBuild_NoProject(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)

	cmd := &BuildCommand{
		loader:      &workspaceLoader{fs: fs, options: []workspace.Option{workspace.WithCompiler(newFakeCompiler(fs))}},
		interactive: func() bool { return false },
	}
	ws := loadWorkspace(t, fs)

	_, err := cmd.selectProject(NewRootCommand(fs), ws, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no project specified")

	_, err = cmd.selectProject(NewRootCommand(fs), ws, []string{"missing"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "project missing not found in workspace")
}

func TestBuild_RecordsHistory(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)
	stateDir := t.TempDir()

	_, err := runCLIWithStateDir(t, fs, compiler, stateDir, "build", "api")
	require.NoError(t, err)

	out, err := runCLIWithStateDir(t, fs, compiler, stateDir, "history", "--format", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"project": "api"`)
	require.Contains(t, out, `"project": "shared"`)

	out, err = runCLIWithStateDir(t, fs, compiler, stateDir, "history", "shared", "--format", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"project": "shared"`)
	require.NotContains(t, out, `"project": "api"`)
}

func TestHistory_Empty(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "history")
	require.NoError(t, err)
	require.Contains(t, out, "No builds recorded")
}

func TestClean(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "api")
	require.NoError(t, err)

	out, err := runCLI(t, fs, compiler, "clean", "shared")
	require.NoError(t, err)
	require.Contains(t, out, "🧹 Clean complete for shared")
	require.False(t, fs.Exists("/test-workspace/libs/shared/bin/debug/shared"))
}
