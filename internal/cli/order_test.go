package cli

import (
	"encoding/json"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

func chain(wb *workspace.WorkspaceBuilder) {
	wb.AddProject("web", "apps/web", "github.com/example/web")
	wb.AddProject("api", "apps/api", "github.com/example/api")
	wb.AddProject("core", "libs/core", "github.com/example/core")
	wb.AddProject("tools", "tools", "github.com/example/tools")
	wb.AddReference("web", "api")
	wb.AddReference("api", "core")
}

func TestOrder_Text(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, chain)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "order", "web")
	require.NoError(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestOrder_AllJSON(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, chain)

	out, err := runCLI(t, fs, newFakeCompiler(fs), "order", "--all", "--format", "json")
	require.NoError(t, err)

	var output OrderOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	require.Empty(t, output.Root)
	require.Empty(t, output.Cyclic)

	position := map[string]int{}
	for i, e := range output.Projects {
		position[e.Name] = i
		require.True(t, e.NeedsBuilding)
	}
	require.Len(t, position, 4)
	require.Less(t, position["core"], position["api"])
	require.Less(t, position["api"], position["web"])
}

func TestOrder_ReportsCycle(t *testing.T) {
	t.Setenv(contextEnvVar, "")

	fs := buildFS(t, func(wb *workspace.WorkspaceBuilder) {
		wb.AddProject("a", "a", "github.com/example/a")
		wb.AddProject("b", "b", "github.com/example/b")
		wb.AddReference("a", "b")
		wb.AddReference("b", "a")
	})

	out, err := runCLI(t, fs, newFakeCompiler(fs), "order", "a", "--format", "json")
	require.NoError(t, err)

	var output OrderOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	require.ElementsMatch(t, []string{"a", "b"}, output.Cyclic)

	text, err := runCLI(t, fs, newFakeCompiler(fs), "order", "a")
	require.NoError(t, err)
	require.Contains(t, text, "⚠️  Reference cycle:")
}
