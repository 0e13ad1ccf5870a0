package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/projectfile"
	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command group
func NewAddCommand(loader *workspaceLoader) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "add",
		Short: "Add files or references to a project",
		Long: `Add a file or a reference to a project and save its project.hcl.

The project is taken from --project, COMBINE_CONTEXT or the working directory.`,
	}

	cobraCmd.AddCommand(newAddFileCommand(loader))
	cobraCmd.AddCommand(newAddReferenceCommand(loader))

	return cobraCmd
}

// AddFileCommand handles the add file command
type AddFileCommand struct {
	loader  *workspaceLoader
	project string
	action  string
}

func newAddFileCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &AddFileCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "file <path>...",
		Short: "Add files to a project",
		Args:  cobra.MinimumNArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.project, "project", "", "Project name")
	cobraCmd.Flags().StringVar(&cmd.action, "action", "compile", "Build action (compile, copy, exclude, embed, none)")

	return cobraCmd
}

// Run executes the add file command
func (c *AddFileCommand) Run(cmd *cobra.Command, args []string) error {
	action, err := models.ParseBuildAction(c.action)
	if err != nil {
		return err
	}

	return editProject(cmd, c.loader, c.project, func(p *project.Project) error {
		for _, arg := range args {
			path, err := absFromWorkingDir(c.loader, arg)
			if err != nil {
				return err
			}
			f, err := p.AddFile(path, action)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "➕ %s (%s)\n", f.RelativePath, f.BuildAction)
		}
		return nil
	})
}

// AddReferenceCommand handles the add reference command
type AddReferenceCommand struct {
	loader      *workspaceLoader
	project     string
	noLocalCopy bool
}

func newAddReferenceCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &AddReferenceCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "reference <project|assembly|gac> <target>",
		Short: "Add a reference to a project",
		Example: `  # api depends on the shared project
  combine add reference project shared --project api

  # link a prebuilt library
  combine add reference assembly lib/native.so`,
		Args: cobra.ExactArgs(2),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.project, "project", "", "Project name")
	cobraCmd.Flags().BoolVar(&cmd.noLocalCopy, "no-local-copy", false, "Do not copy the reference into the output directory")

	return cobraCmd
}

// Run executes the add reference command
func (c *AddReferenceCommand) Run(cmd *cobra.Command, args []string) error {
	refType, err := models.ParseReferenceType(args[0])
	if err != nil {
		return err
	}
	target := args[1]

	return editProject(cmd, c.loader, c.project, func(p *project.Project) error {
		if refType == models.ReferenceProject {
			if target == p.Name() {
				return fmt.Errorf("project %s cannot reference itself", target)
			}
			if p.Resolver() == nil || p.Resolver().FindProject(target) == nil {
				return fmt.Errorf("project %s not found in workspace", target)
			}
		}

		ref, err := p.AddReference(refType, target)
		if err != nil {
			return err
		}
		if c.noLocalCopy {
			ref.LocalCopy = false
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔗 %s\n", ref)
		return nil
	})
}

// editProject loads the workspace, applies edit to the resolved project and
// saves its manifest.
func editProject(cmd *cobra.Command, loader *workspaceLoader, name string, edit func(*project.Project) error) error {
	ws, err := loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := resolveProject(loader.fs, ws, name)
	if err != nil {
		return err
	}

	if err := edit(p); err != nil {
		return err
	}

	if err := projectfile.Save(loader.fs, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "💾 Saved %s\n", p.FilePath())
	return nil
}

func absFromWorkingDir(loader *workspaceLoader, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := loader.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}
