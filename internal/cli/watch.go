package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/watch"
	"github.com/spf13/cobra"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	loader   *workspaceLoader
	interval time.Duration
	noBuild  bool
}

// NewWatchCommand creates a new watch command
func NewWatchCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &WatchCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "watch [project]",
		Short: "Rebuild a project when its files change",
		Long: `Poll the files of a project and the projects it references, and rebuild
the project whenever one of them changes. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().DurationVar(&cmd.interval, "interval", watch.DefaultInterval, "Polling interval")
	cobraCmd.Flags().BoolVar(&cmd.noBuild, "no-build", false, "Only report changes")

	return cobraCmd
}

// Run executes the watch command
func (c *WatchCommand) Run(cmd *cobra.Command, args []string) error {
	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := resolveProject(c.loader.fs, ws, projectArg(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	watched := build.CollectReferences(p)
	watcher := watch.New(c.loader.fs, watched, watch.WithInterval(c.interval))

	fmt.Fprintf(out, "👀 Watching %s (%s)\n", p.Name(), plural(len(watched), "project"))

	err = watcher.Run(ctx, func(changes []watch.Change) {
		c.handleChanges(ctx, out, p, changes)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleChanges reports a batch of changes and rebuilds p. It runs on the
// polling goroutine, so rebuilds never overlap.
func (c *WatchCommand) handleChanges(ctx context.Context, out io.Writer, p *project.Project, changes []watch.Change) {
	for _, change := range changes {
		fmt.Fprintf(out, "✏️  %s: %s\n", change.Project, change.Path)
	}
	if c.noBuild {
		return
	}

	result, err := build.NewBuilder().Build(ctx, p, true, progress.NewConsoleMonitor(ctx, out))
	printBuildResult(out, result)
	if err != nil {
		ctxlog.FromContext(ctx).Error("build failed", "project", p.Name(), "error", err)
	}
}
