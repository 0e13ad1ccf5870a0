package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/spf13/cobra"
)

// EachCommand handles the each command
type EachCommand struct {
	loader       *workspaceLoader
	filters      []string
	command      []string
	stdoutWriter io.Writer
	stderrWriter io.Writer
}

// NewEachCommand creates a new each command
func NewEachCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &EachCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "each [flags] -- <command> [args...]",
		Short: "Run a command for each project matching filters",
		Long: `Run a command for each project, passing the project status as JSON via STDIN.

Filters:
  all          - All projects (default)
  needs-build  - Projects whose output is missing or stale
  up-to-date   - Projects whose output is current
  has-output   - Projects whose output file exists
  no-output    - Projects without an output file

Environment variables are also set: PROJECT, PROJECT_PATH, CONFIGURATION,
OUTPUT_FILE and COMBINE_CONTEXT. combine commands started this way pick up
the project from COMBINE_CONTEXT.`,
		Example: `  # Build every stale project separately
  combine each --filter=needs-build -- combine build --no-references

  # Custom script
  combine each -- sh -c 'echo "$PROJECT -> $OUTPUT_FILE"'`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringSliceVar(&cmd.filters, "filter", []string{"all"},
		"Filter projects (needs-build, up-to-date, has-output, no-output, all)")

	return cobraCmd
}

// Run executes the each command
func (c *EachCommand) Run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command specified (use -- before command)")
	}
	c.command = args

	if c.stdoutWriter == nil {
		c.stdoutWriter = cmd.OutOrStdout()
	}
	if c.stderrWriter == nil {
		c.stderrWriter = cmd.ErrOrStderr()
	}

	filterTypes, err := parseFilters(c.filters)
	if err != nil {
		return fmt.Errorf("failed to parse filters: %w", err)
	}

	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	filtered := filterStatuses(buildStatuses(c.loader.fs, ws), filterTypes)
	if len(filtered) == 0 {
		fmt.Fprintln(c.stdoutWriter, "No projects match the specified filters")
		return nil
	}

	return c.executeForStatuses(filtered)
}

func (c *EachCommand) executeForStatuses(statuses []*models.ProjectStatus) error {
	out := c.stdoutWriter
	fmt.Fprintf(out, "Running command for %s...\n\n", plural(len(statuses), "project"))

	var failed []string
	for i, status := range statuses {
		if i > 0 {
			fmt.Fprintln(out, "\n"+strings.Repeat("-", 60)+"\n")
		}

		fmt.Fprintf(out, "📦 [%d/%d] %s\n", i+1, len(statuses), status.Project)

		if err := c.executeForProject(status); err != nil {
			fmt.Fprintf(out, "❌ Failed: %v\n", err)
			failed = append(failed, status.Project)
			continue
		}

		fmt.Fprintf(out, "✓ Success\n")
	}

	if len(failed) > 0 {
		fmt.Fprintf(out, "\n⚠️  %s failed: %s\n", plural(len(failed), "project"), strings.Join(failed, ", "))
		return fmt.Errorf("some projects failed")
	}

	return nil
}

// executeForProject executes the command for a single project
func (c *EachCommand) executeForProject(status *models.ProjectStatus) error {
	jsonData, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	cmdName := c.command[0]
	cmdArgs := c.command[1:]

	execCmd := exec.Command(cmdName, cmdArgs...)
	execCmd.Stdin = bytes.NewReader(jsonData)
	execCmd.Stdout = c.stdoutWriter
	execCmd.Stderr = c.stderrWriter

	execCmd.Env = append(os.Environ(),
		fmt.Sprintf("PROJECT=%s", status.Project),
		fmt.Sprintf("PROJECT_PATH=%s", status.ProjectPath),
		fmt.Sprintf("CONFIGURATION=%s", status.Configuration),
		fmt.Sprintf("OUTPUT_FILE=%s", status.OutputFile),
		fmt.Sprintf("%s=%s", contextEnvVar, string(jsonData)),
	)

	return execCmd.Run()
}
