package cli

import (
	"testing"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestResolveProjectName(t *testing.T) {
	fs := buildFS(t, func(wb *workspace.WorkspaceBuilder) {
		wb.AddProject("api", "apps/api", "github.com/example/api")
		wb.AddProject("auth", "apps/api/plugins/auth", "github.com/example/api/plugins/auth")
	})
	ws := loadWorkspace(t, fs)

	t.Run("explicit name wins", func(t *testing.T) {
		t.Setenv(contextEnvVar, `{"project":"auth"}`)
		name, err := resolveProjectName(fs, ws, "api")
		require.NoError(t, err)
		require.Equal(t, "api", name)
	})

	t.Run("context from env", func(t *testing.T) {
		t.Setenv(contextEnvVar, `{"project":"auth"}`)
		name, err := resolveProjectName(fs, ws, "")
		require.NoError(t, err)
		require.Equal(t, "auth", name)
	})

	t.Run("deepest project containing working dir", func(t *testing.T) {
		t.Setenv(contextEnvVar, "")
		fs.SetCurrentDir("/test-workspace/apps/api/plugins/auth/handlers")
		defer fs.SetCurrentDir("/test-workspace")

		name, err := resolveProjectName(fs, ws, "")
		require.NoError(t, err)
		require.Equal(t, "auth", name)
	})

	t.Run("sibling directory is not a match", func(t *testing.T) {
		t.Setenv(contextEnvVar, "")
		fs.SetCurrentDir("/test-workspace/apps/api-docs")
		defer fs.SetCurrentDir("/test-workspace")

		_, err := resolveProjectName(fs, ws, "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "no project specified")
	})

	t.Run("invalid env context is ignored", func(t *testing.T) {
		t.Setenv(contextEnvVar, `{"configuration":"Debug"}`)
		_, err := resolveProjectName(fs, ws, "")
		require.Error(t, err)
	})
}

func TestReadProjectContextFromEnv(t *testing.T) {
	t.Setenv(contextEnvVar, "not json")
	_, err := readProjectContextFromEnv()
	require.Error(t, err)

	t.Setenv(contextEnvVar, `{"project":"api","configuration":"Release"}`)
	status, err := readProjectContextFromEnv()
	require.NoError(t, err)
	require.Equal(t, "api", status.Project)
	require.Equal(t, "Release", status.Configuration)
}

func TestFilterStatuses(t *testing.T) {
	statuses := []*models.ProjectStatus{
		{Project: "built", HasOutput: true},
		{Project: "stale", HasOutput: true, NeedsBuilding: true},
		{Project: "new", NeedsBuilding: true},
	}

	names := func(in []*models.ProjectStatus) []string {
		out := []string{}
		for _, s := range in {
			out = append(out, s.Project)
		}
		return out
	}

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{name: "default", filters: nil, want: []string{"built", "stale", "new"}},
		{name: "all overrides", filters: []string{"needs-build", "all"}, want: []string{"built", "stale", "new"}},
		{name: "needs build", filters: []string{"needs-build"}, want: []string{"stale", "new"}},
		{name: "and logic", filters: []string{"needs-build", "has-output"}, want: []string{"stale"}},
		{name: "up to date", filters: []string{"up-to-date"}, want: []string{"built"}},
		{name: "no output", filters: []string{"no-output"}, want: []string{"new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := parseFilters(tt.filters)
			require.NoError(t, err)
			require.Equal(t, tt.want, names(filterStatuses(statuses, filters)))
		})
	}
}
