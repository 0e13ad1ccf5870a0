package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/jakoblorz/go-combine/internal/compiler"
	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/spf13/cobra"
)

// ExitError carries the exit code of a program started by 'combine run'.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with status %d", e.Code)
}

// NewRootCommand creates the root command. options are applied to every
// workspace the subcommands detect.
func NewRootCommand(fs filesystem.FileSystem, options ...workspace.Option) *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "combine",
		Short: "Build Go workspaces incrementally",
		Long: `A CLI tool for building the projects of a Go workspace.

combine tracks which projects are stale, builds them in reference order,
stops at the first failing project and records every build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := ctxlog.New(logLevel, logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().Bool(useGoEnvFlag, false, "Locate the workspace with 'go env GOWORK'")
	rootCmd.PersistentFlags().String(stateDirFlag, "", "Directory for build history (default <workspace>/.combine)")

	loader := &workspaceLoader{fs: fs, options: options}

	// Add subcommands
	rootCmd.AddCommand(NewBuildCommand(loader))
	rootCmd.AddCommand(NewCleanCommand(loader))
	rootCmd.AddCommand(NewStatusCommand(loader))
	rootCmd.AddCommand(NewOrderCommand(loader))
	rootCmd.AddCommand(NewDeployFilesCommand(loader))
	rootCmd.AddCommand(NewRunCommand(loader))
	rootCmd.AddCommand(NewWatchCommand(loader))
	rootCmd.AddCommand(NewHistoryCommand(loader))
	rootCmd.AddCommand(NewEachCommand(loader))
	rootCmd.AddCommand(NewAddCommand(loader))
	rootCmd.AddCommand(NewRemoveCommand(loader))

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	fs := filesystem.NewOSFileSystem()
	rootCmd := NewRootCommand(fs, workspace.WithCompiler(compiler.NewAuto()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
		return 1
	}

	return 0
}
