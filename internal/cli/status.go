package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/spf13/cobra"
)

// StatusCommand handles the status command
type StatusCommand struct {
	loader  *workspaceLoader
	filters []string
	format  string
}

// NewStatusCommand creates a new status command
func NewStatusCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &StatusCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which projects need building",
		Long: `Show the build state of every project in the workspace.

Filters:
  all          - All projects (default)
  needs-build  - Projects whose output is missing or stale
  up-to-date   - Projects whose output is current
  has-output   - Projects whose output file exists
  no-output    - Projects without an output file`,
		Example: `  # List stale projects as JSON
  combine status --filter needs-build --format json`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringSliceVar(&cmd.filters, "filter", []string{"all"},
		"Filter projects (needs-build, up-to-date, has-output, no-output, all)")
	cobraCmd.Flags().StringVar(&cmd.format, "format", "text", "Output format: text or json")

	return cobraCmd
}

// Run executes the status command
func (c *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	filterTypes, err := parseFilters(c.filters)
	if err != nil {
		return fmt.Errorf("failed to parse filters: %w", err)
	}

	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	statuses := filterStatuses(buildStatuses(c.loader.fs, ws), filterTypes)

	out := cmd.OutOrStdout()
	switch c.format {
	case "json":
		return outputStatusJSON(out, statuses)
	case "text":
		outputStatusText(out, statuses)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text or json)", c.format)
	}
}

func outputStatusJSON(out io.Writer, statuses []*models.ProjectStatus) error {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func outputStatusText(out io.Writer, statuses []*models.ProjectStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No projects match the specified filters")
		return
	}

	for i, s := range statuses {
		if i > 0 {
			fmt.Fprintln(out)
		}

		marker := "✅"
		state := "up to date"
		if s.NeedsBuilding {
			marker = "🔨"
			state = "needs build"
		}

		output := s.OutputFile
		if output == "" {
			output = "(none)"
		} else if !s.HasOutput {
			output += " (missing)"
		}

		references := "(none)"
		if len(s.References) > 0 {
			references = strings.Join(s.References, ", ")
		}

		fmt.Fprintf(out, "%s %s (%s, %s)\n", marker, s.Project, s.Type, s.Configuration)
		fmt.Fprintf(out, "   state:      %s\n", state)
		fmt.Fprintf(out, "   output:     %s\n", output)
		fmt.Fprintf(out, "   files:      %d\n", s.Files)
		fmt.Fprintf(out, "   references: %s\n", references)
	}
}
