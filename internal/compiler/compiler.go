// Package compiler provides the compilation hooks projects are built with.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
)

var ErrNoBuildCommand = errors.New("no build command configured")

// CommandCompiler runs the build command of the active configuration through
// the shell and collects "file:line:col: error|warning: msg" lines.
type CommandCompiler struct {
	Shell string
}

// NewCommandCompiler creates a CommandCompiler using sh
func NewCommandCompiler() *CommandCompiler {
	return &CommandCompiler{Shell: "sh"}
}

func (c *CommandCompiler) Compile(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.CompilerResult, error) {
	cfg, err := p.ResolveConfiguration()
	if err != nil {
		return nil, err
	}
	if cfg.BuildCommand == "" {
		return nil, fmt.Errorf("project %s: %w", p.Name(), ErrNoBuildCommand)
	}

	return run(ctx, invocation{
		dir:      p.BaseDir(),
		env:      cfg.EnvList(),
		name:     c.Shell,
		args:     []string{"-c", cfg.BuildCommand},
		log:      progress.OrNull(monitor).Log(),
		fallback: "",
	})
}

// GoCompiler builds Go projects with "go build -o <output> .". Every
// positioned line in the output is an error.
type GoCompiler struct {
	GoBin string
}

// NewGoCompiler creates a GoCompiler using the go binary on PATH
func NewGoCompiler() *GoCompiler {
	return &GoCompiler{GoBin: "go"}
}

func (c *GoCompiler) Compile(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.CompilerResult, error) {
	cfg, err := p.ResolveConfiguration()
	if err != nil {
		return nil, err
	}
	if cfg.OutputFile == "" {
		return nil, fmt.Errorf("project %s: no output file configured", p.Name())
	}

	return run(ctx, invocation{
		dir:      p.BaseDir(),
		env:      cfg.EnvList(),
		name:     c.GoBin,
		args:     []string{"build", "-o", cfg.OutputFile, "."},
		log:      progress.OrNull(monitor).Log(),
		fallback: models.SeverityError,
	})
}

// NopCompiler reports success without doing anything.
type NopCompiler struct{}

func (NopCompiler) Compile(context.Context, *project.Project, progress.Monitor) (*models.CompilerResult, error) {
	return &models.CompilerResult{}, nil
}

type invocation struct {
	dir      string
	env      []string
	name     string
	args     []string
	log      io.Writer
	fallback models.Severity
}

// run executes the command, streaming output to the monitor log. A non-zero
// exit without parsed errors becomes a single error diagnostic. Only a
// command that cannot be started is returned as an error.
func run(ctx context.Context, inv invocation) (*models.CompilerResult, error) {
	logger := ctxlog.FromContext(ctx)

	var captured bytes.Buffer
	out := io.MultiWriter(&captured, inv.log)

	cmd := exec.CommandContext(ctx, inv.name, inv.args...)
	cmd.Dir = inv.dir
	cmd.Env = append(os.Environ(), inv.env...)
	cmd.Stdout = out
	cmd.Stderr = out

	logger.Debug("running compiler", "command", inv.name, "args", inv.args, "dir", inv.dir)

	runErr := cmd.Run()

	result := &models.CompilerResult{Diagnostics: ParseDiagnostics(&captured, inv.fallback)}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		if result.ErrorCount() == 0 {
			result.Add(models.Diagnostic{
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("%s exited with status %d", inv.name, exitErr.ExitCode()),
			})
		}
	default:
		return nil, fmt.Errorf("failed to run %s: %w", inv.name, runErr)
	}

	return result, nil
}
