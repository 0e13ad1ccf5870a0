package cli

import (
	"fmt"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/execute"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	loader  *workspaceLoader
	config  string
	noBuild bool
	runner  *execute.Runner
}

// NewRunCommand creates a new run command
func NewRunCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &RunCommand{
		loader: loader,
		runner: execute.NewRunner(),
	}

	cobraCmd := &cobra.Command{
		Use:   "run [project] [-- args...]",
		Short: "Build and run a project",
		Long: `Build a project if it is stale, then run its configuration's execute command,
or its output file when no execute command is configured. Arguments after --
are passed to the program. The exit code of the program becomes the exit
code of combine.`,
		Example: `  # Run api with extra arguments
  combine run api -- --port 8080`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.config, "config", "", "Configuration to run (default: active configuration)")
	cobraCmd.Flags().BoolVar(&cmd.noBuild, "no-build", false, "Run without building first")

	return cobraCmd
}

// Run executes the run command
func (c *RunCommand) Run(cmd *cobra.Command, args []string) error {
	name, programArgs := splitRunArgs(cmd, args)

	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := resolveProject(c.loader.fs, ws, name)
	if err != nil {
		return err
	}
	if c.config != "" {
		if err := p.SetActiveConfiguration(c.config); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if !c.noBuild {
		result, err := build.NewBuilder().Build(ctx, p, true, progress.NewNullMonitor())
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		if !result.Succeeded() {
			printBuildResult(cmd.ErrOrStderr(), result)
			return fmt.Errorf("build failed with %s", plural(result.ErrorCount(), "error"))
		}
	}

	code, err := c.runner.Run(ctx, p, programArgs, execute.Console{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// splitRunArgs separates the optional project name from the arguments
// following --.
func splitRunArgs(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		dash = len(args)
	}

	name := ""
	if dash > 0 {
		name = args[0]
	}
	return name, args[dash:]
}
