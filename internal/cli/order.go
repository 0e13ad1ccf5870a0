package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/spf13/cobra"
)

// OrderCommand handles the order command
type OrderCommand struct {
	loader *workspaceLoader
	all    bool
	format string
}

// OrderEntry is one project in the build order
type OrderEntry struct {
	Name          string   `json:"name"`
	NeedsBuilding bool     `json:"needsBuilding"`
	References    []string `json:"references"`
}

// OrderOutput represents the complete order output
type OrderOutput struct {
	Root     string       `json:"root,omitempty"`
	Projects []OrderEntry `json:"projects"`
	Cyclic   []string     `json:"cyclic"`
}

// NewOrderCommand creates a new order command
func NewOrderCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &OrderCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "order [project]",
		Short: "Show the order projects are built in",
		Long: `Show a project and every project it references in build order: each
project appears after the projects it references. Projects on a reference
cycle are listed last, in declaration order.`,
		Example: `  # Order for one project
  combine order api

  # Order for the whole workspace, as JSON
  combine order --all --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.all, "all", false, "Order every project in the workspace")
	cobraCmd.Flags().StringVar(&cmd.format, "format", "text", "Output format: text or json")

	return cobraCmd
}

// Run executes the order command
func (c *OrderCommand) Run(cmd *cobra.Command, args []string) error {
	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	var output OrderOutput
	var projects []*project.Project
	if c.all {
		projects = ws.Projects
	} else {
		p, err := resolveProject(c.loader.fs, ws, projectArg(args))
		if err != nil {
			return err
		}
		output.Root = p.Name()
		projects = build.CollectReferences(p)
	}

	sorted, cyclic := build.TopologicalSort(projects)
	output.Cyclic = build.Names(cyclic)
	if output.Cyclic == nil {
		output.Cyclic = []string{}
	}
	for _, p := range sorted {
		refs := p.ProjectReferences()
		if refs == nil {
			refs = []string{}
		}
		output.Projects = append(output.Projects, OrderEntry{
			Name:          p.Name(),
			NeedsBuilding: p.NeedsBuilding(),
			References:    refs,
		})
	}

	switch c.format {
	case "json":
		return c.outputJSON(cmd.OutOrStdout(), output)
	case "text":
		c.outputText(cmd.OutOrStdout(), output)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text or json)", c.format)
	}
}

func (c *OrderCommand) outputJSON(out io.Writer, output OrderOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func (c *OrderCommand) outputText(out io.Writer, output OrderOutput) {
	if output.Root != "" {
		fmt.Fprintf(out, "Build order for %s:\n", output.Root)
	} else {
		fmt.Fprintln(out, "Build order for the workspace:")
	}

	width := 0
	for _, e := range output.Projects {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	for i, e := range output.Projects {
		state := "up to date"
		if e.NeedsBuilding {
			state = "needs build"
		}
		fmt.Fprintf(out, "  %d. %-*s  (%s)\n", i+1, width, e.Name, state)
	}

	if len(output.Cyclic) > 0 {
		fmt.Fprintf(out, "⚠️  Reference cycle: %s\n", strings.Join(output.Cyclic, ", "))
	}
}
