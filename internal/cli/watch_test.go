package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/watch"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestWatch_RebuildsOnChange(t *testing.T) {
	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)
	ws := loadWorkspace(t, fs, workspace.WithCompiler(compiler))

	api, err := ws.GetProject("api")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = build.NewBuilder().Build(ctx, api, true, nil)
	require.NoError(t, err)
	require.False(t, api.NeedsBuilding())

	watcher := watch.New(fs, build.CollectReferences(api))
	require.Empty(t, watcher.Poll(ctx))

	fs.Touch("/test-workspace/libs/shared/main.go")
	changes := watcher.Poll(ctx)
	require.Equal(t, []watch.Change{{Project: "shared", Path: "/test-workspace/libs/shared/main.go"}}, changes)

	var out bytes.Buffer
	cmd := &WatchCommand{}
	cmd.handleChanges(ctx, &out, api, changes)

	require.Contains(t, out.String(), "✏️  shared: /test-workspace/libs/shared/main.go")
	require.Contains(t, out.String(), "✅ Build succeeded: 2 projects built, 0 errors, 0 warnings")
	require.Equal(t, []string{"shared", "api", "shared", "api"}, compiler.Calls())
}

func TestWatch_NoBuild(t *testing.T) {
	fs := buildFS(t, apiAndShared)
	compiler := newFakeCompiler(fs)
	ws := loadWorkspace(t, fs, workspace.WithCompiler(compiler))

	api, err := ws.GetProject("api")
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &WatchCommand{noBuild: true}
	cmd.handleChanges(context.Background(), &out, api, []watch.Change{{Project: "api", Path: "/test-workspace/apps/api/main.go"}})

	require.Equal(t, "✏️  api: /test-workspace/apps/api/main.go\n", out.String())
	require.Empty(t, compiler.Calls())
}
