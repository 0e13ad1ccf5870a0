// Package execute runs the output of a built project.
package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/project"
)

var ErrNothingToExecute = errors.New("nothing to execute")

// Console is where an executed program reads and writes.
type Console struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdConsole returns a console attached to the current process.
func StdConsole() Console {
	return Console{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Runner starts project programs.
type Runner struct {
	Shell string
}

// NewRunner creates a Runner using sh for execute commands
func NewRunner() *Runner {
	return &Runner{Shell: "sh"}
}

// Run executes the configuration's execute command when it has one, and the
// output file otherwise. Configured arguments come first, followed by args.
// The exit code of the program is returned; a non-zero exit is not an error.
func (r *Runner) Run(ctx context.Context, p *project.Project, args []string, console Console) (int, error) {
	cfg, err := p.ResolveConfiguration()
	if err != nil {
		return -1, err
	}

	all := append(append([]string{}, cfg.Arguments...), args...)

	var cmd *exec.Cmd
	switch {
	case cfg.ExecuteCommand != "":
		// "$@" forwards the arguments to the script
		shellArgs := append([]string{"-c", cfg.ExecuteCommand + ` "$@"`, p.Name()}, all...)
		cmd = exec.CommandContext(ctx, r.Shell, shellArgs...)
	case cfg.OutputFile != "":
		if !p.FileSystem().Exists(cfg.OutputFile) {
			return -1, fmt.Errorf("project %s: %w: %s has not been built", p.Name(), ErrNothingToExecute, cfg.OutputFile)
		}
		cmd = exec.CommandContext(ctx, cfg.OutputFile, all...)
	default:
		return -1, fmt.Errorf("project %s: %w", p.Name(), ErrNothingToExecute)
	}

	cmd.Dir = p.BaseDir()
	cmd.Env = append(os.Environ(), cfg.EnvList()...)
	cmd.Stdin = console.Stdin
	cmd.Stdout = console.Stdout
	cmd.Stderr = console.Stderr

	ctxlog.FromContext(ctx).Debug("executing project", "project", p.Name(), "command", cmd.Args)

	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to execute %s: %w", p.Name(), err)
	}
	return 0, nil
}
