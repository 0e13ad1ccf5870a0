package cli

import (
	"fmt"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/spf13/cobra"
)

// CleanCommand handles the clean command
type CleanCommand struct {
	loader       *workspaceLoader
	config       string
	noReferences bool
}

// NewCleanCommand creates a new clean command
func NewCleanCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &CleanCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "clean [project]",
		Short: "Remove build outputs",
		Long: `Remove the output file of a project, its debug symbols and the reference
files copied next to it. Referenced projects are cleaned too unless
--no-references is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.config, "config", "", "Configuration to clean (default: active configuration)")
	cobraCmd.Flags().BoolVar(&cmd.noReferences, "no-references", false, "Clean only the project itself")

	return cobraCmd
}

// Run executes the clean command
func (c *CleanCommand) Run(cmd *cobra.Command, args []string) error {
	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := resolveProject(c.loader.fs, ws, projectArg(args))
	if err != nil {
		return err
	}
	if c.config != "" {
		if err := p.SetActiveConfiguration(c.config); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if err := build.NewBuilder().Clean(ctx, p, !c.noReferences, progress.NewConsoleMonitor(ctx, out)); err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	fmt.Fprintf(out, "🧹 Clean complete for %s\n", p.Name())
	return nil
}
