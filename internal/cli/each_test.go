package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEach_RunsForEveryProject(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "each", "--", "sh", "-c", `echo "project=$PROJECT config=$CONFIGURATION"`)
	require.NoError(t, err)

	require.Contains(t, out, "Running command for 2 projects...")
	require.Contains(t, out, "📦 [1/2] shared")
	require.Contains(t, out, "project=shared config=Debug")
	require.Contains(t, out, "📦 [2/2] api")
	require.Contains(t, out, "project=api config=Debug")
	require.Equal(t, 2, strings.Count(out, "✓ Success"))
}

func TestEach_PassesStatusOnStdin(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "shared")
	require.NoError(t, err)

	out, err := runCLI(t, fs, compiler, "each", "--filter", "has-output", "--", "cat")
	require.NoError(t, err)
	require.Contains(t, out, "📦 [1/1] shared")
	require.Contains(t, out, `"project": "shared"`)
	require.Contains(t, out, `"hasOutput": true`)
}

func TestEach_ReportsFailures(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "each", "--", "sh", "-c", `test "$PROJECT" = shared`)
	require.Error(t, err)
	require.Contains(t, out, "❌ Failed: exit status 1")
	require.Contains(t, out, "⚠️  1 project failed: api")
}

func TestEach_NoCommand(t *testing.T) {
	fs := buildFS(t, apiAndShared)

	_, err := runCLI(t, fs, newFakeCompiler(fs), "each")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no command specified")
}
