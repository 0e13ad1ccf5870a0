package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/tui/picker"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// BuildCommand handles the build command
type BuildCommand struct {
	loader       *workspaceLoader
	config       string
	noReferences bool
	history      bool
	interactive  func() bool
}

// NewBuildCommand creates a new build command
func NewBuildCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &BuildCommand{
		loader:      loader,
		interactive: isInteractive,
	}

	cobraCmd := &cobra.Command{
		Use:   "build [project]",
		Short: "Build a project and the projects it references",
		Long: `Build a project. Referenced projects that are stale are built first, in
dependency order. The build stops at the first project reporting errors.

Without a project argument the project is taken from COMBINE_CONTEXT or the
working directory; in an interactive terminal a picker is shown otherwise.`,
		Example: `  # Build the project in the current directory
  combine build

  # Build api with the Release configuration, skipping its references
  combine build api --config Release --no-references`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.config, "config", "", "Configuration to build (default: active configuration)")
	cobraCmd.Flags().BoolVar(&cmd.noReferences, "no-references", false, "Build only the project itself")
	cobraCmd.Flags().BoolVar(&cmd.history, "history", true, "Record the build in the workspace history")

	return cobraCmd
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := c.selectProject(cmd, ws, args)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	opts, closeHistory, err := historyOptions(cmd, ws, c.history)
	if err != nil {
		return err
	}
	defer closeHistory()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🔨 Building %s (%s)\n", p.Name(), p.ActiveConfigurationName())

	ctx := cmd.Context()
	result, err := build.NewBuilder(opts...).Build(ctx, p, !c.noReferences, progress.NewConsoleMonitor(ctx, out))
	printBuildResult(out, result)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("build failed with %s", plural(result.ErrorCount(), "error"))
	}

	return nil
}

// selectProject resolves the project and applies --config. It returns nil
// when the user aborted the picker.
func (c *BuildCommand) selectProject(cmd *cobra.Command, ws *workspace.Workspace, args []string) (*project.Project, error) {
	config := c.config

	p, err := resolveProject(c.loader.fs, ws, projectArg(args))
	if err != nil {
		if len(args) > 0 || !c.interactive() {
			return nil, err
		}

		result, flowErr := picker.NewFlow(ws.Projects).Run()
		if flowErr != nil {
			return nil, fmt.Errorf("failed to run TUI: %w", flowErr)
		}
		if result == nil {
			return nil, nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), picker.RenderSelection(result))

		if p, err = ws.GetProject(result.Project); err != nil {
			return nil, err
		}
		if config == "" {
			config = result.Configuration
		}
	}

	if config != "" {
		if err := p.SetActiveConfiguration(config); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func printBuildResult(out io.Writer, result *models.BuildResult) {
	if result == nil {
		return
	}

	for _, d := range result.Errors {
		fmt.Fprintf(out, "  ❌ %s\n", d)
	}
	for _, d := range result.Warnings {
		fmt.Fprintf(out, "  ⚠️  %s\n", d)
	}

	summary := fmt.Sprintf("%s built, %s, %s",
		plural(result.BuiltCount, "project"),
		plural(result.ErrorCount(), "error"),
		plural(result.WarningCount(), "warning"))

	switch {
	case result.Cancelled:
		fmt.Fprintf(out, "⏹  Build cancelled: %s\n", summary)
	case result.Succeeded():
		fmt.Fprintf(out, "✅ Build succeeded: %s\n", summary)
	default:
		fmt.Fprintf(out, "❌ Build failed: %s\n", summary)
	}
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
