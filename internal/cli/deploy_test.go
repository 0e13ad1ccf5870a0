package cli

import (
	"testing"

	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestDeployFiles_AfterBuild(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "api")
	require.NoError(t, err)

	// the build copies local-copy references next to the output
	require.True(t, fs.Exists("/test-workspace/apps/api/bin/debug/shared"))

	out, err := runCLI(t, fs, compiler, "deploy-files", "api")
	require.NoError(t, err)
	require.Equal(t,
		"/test-workspace/libs/shared/bin/debug/shared -> program-files/shared\n"+
			"/test-workspace/apps/api/bin/debug/api -> program-files/api\n",
		out)

	out, err = runCLI(t, fs, compiler, "deploy-files", "api", "--references-only")
	require.NoError(t, err)
	require.Equal(t, "/test-workspace/libs/shared/bin/debug/shared -> program-files/shared\n", out)
}

func TestDeployFiles_CopyFilesAndSymbols(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, func(wb *workspace.WorkspaceBuilder) {
		apiAndShared(wb)
		wb.AddFile("api", "config.yaml", "port: 8080\n")
		wb.SetManifest("api", `
project "api" {
  file "config.yaml" {
    action = "copy"
  }
}
`)
	})
	compiler := newFakeCompiler(fs)

	_, err := runCLI(t, fs, compiler, "build", "shared")
	require.NoError(t, err)
	fs.AddFile("/test-workspace/libs/shared/bin/debug/shared.dbg", []byte("symbols"))

	out, err := runCLI(t, fs, compiler, "deploy-files", "api")
	require.NoError(t, err)
	require.Equal(t,
		"/test-workspace/apps/api/config.yaml -> program-files/config.yaml\n"+
			"/test-workspace/libs/shared/bin/debug/shared -> program-files/shared\n"+
			"/test-workspace/libs/shared/bin/debug/shared.dbg -> program-files/shared.dbg\n"+
			"/test-workspace/apps/api/bin/debug/api -> program-files/api\n",
		out)

	out, err = runCLI(t, fs, compiler, "deploy-files", "api", "--copy")
	require.NoError(t, err)
	require.Equal(t, "📦 Copied 2 files into the output directory of api\n", out)
	require.True(t, fs.Exists("/test-workspace/apps/api/bin/debug/shared.dbg"))
}

func TestDeployFiles_NoReferences(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, apiAndShared)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "deploy-files", "shared", "--references-only")
	require.NoError(t, err)
	require.Equal(t, "No deploy files for shared\n", out)
}
