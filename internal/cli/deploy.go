package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/spf13/cobra"
)

// DeployFilesCommand handles the deploy-files command
type DeployFilesCommand struct {
	loader     *workspaceLoader
	config     string
	force      bool
	copy       bool
	references bool
	format     string
}

// NewDeployFilesCommand creates a new deploy-files command
func NewDeployFilesCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &DeployFilesCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "deploy-files [project]",
		Short: "List the files needed to run a project",
		Long: `List the files a project needs at runtime: files with the copy action,
referenced outputs marked local copy together with their debug symbols, and
the project output itself.

With --copy the reference files are copied into the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.config, "config", "", "Configuration to use (default: active configuration)")
	cobraCmd.Flags().BoolVar(&cmd.force, "force", false, "Include references not marked local copy")
	cobraCmd.Flags().BoolVar(&cmd.copy, "copy", false, "Copy reference files into the output directory")
	cobraCmd.Flags().BoolVar(&cmd.references, "references-only", false, "List only files contributed by references")
	cobraCmd.Flags().StringVar(&cmd.format, "format", "text", "Output format: text or json")

	return cobraCmd
}

// Run executes the deploy-files command
func (c *DeployFilesCommand) Run(cmd *cobra.Command, args []string) error {
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

	if c.copy {
		copied := p.CopyReferencesToOutputPath(cmd.Context(), c.force)
		fmt.Fprintf(out, "📦 Copied %s into the output directory of %s\n", plural(copied, "file"), p.Name())
		return nil
	}

	var files []models.DeployFile
	if c.references || c.force {
		files = p.GetReferenceDeployFiles(c.force)
	} else {
		files = p.GetDeployFiles()
	}

	switch c.format {
	case "json":
		if files == nil {
			files = []models.DeployFile{}
		}
		data, err := json.MarshalIndent(files, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal deploy files: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "text":
		if len(files) == 0 {
			fmt.Fprintf(out, "No deploy files for %s\n", p.Name())
			return nil
		}
		for _, f := range files {
			fmt.Fprintf(out, "%s -> %s/%s\n", f.SourcePath, f.TargetDirectory, f.RelativeTargetPath)
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text or json)", c.format)
	}
}
