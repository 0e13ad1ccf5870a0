package cli

import (
	"fmt"

	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command group
func NewRemoveCommand(loader *workspaceLoader) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove files or references from a project",
	}

	cobraCmd.AddCommand(newRemoveFileCommand(loader))
	cobraCmd.AddCommand(newRemoveReferenceCommand(loader))

	return cobraCmd
}

// RemoveFileCommand handles the remove file command
type RemoveFileCommand struct {
	loader  *workspaceLoader
	project string
}

func newRemoveFileCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &RemoveFileCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "file <path>...",
		Short: "Remove files from a project (the files stay on disk)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.project, "project", "", "Project name")

	return cobraCmd
}

// Run executes the remove file command
func (c *RemoveFileCommand) Run(cmd *cobra.Command, args []string) error {
	return editProject(cmd, c.loader, c.project, func(p *project.Project) error {
		for _, arg := range args {
			path, err := absFromWorkingDir(c.loader, arg)
			if err != nil {
				return err
			}
			if err := p.RemoveFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "➖ %s\n", arg)
		}
		return nil
	})
}

// RemoveReferenceCommand handles the remove reference command
type RemoveReferenceCommand struct {
	loader  *workspaceLoader
	project string
}

func newRemoveReferenceCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &RemoveReferenceCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "reference <target>",
		Short: "Remove a reference from a project",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.project, "project", "", "Project name")

	return cobraCmd
}

// Run executes the remove reference command
func (c *RemoveReferenceCommand) Run(cmd *cobra.Command, args []string) error {
	return editProject(cmd, c.loader, c.project, func(p *project.Project) error {
		if err := p.RemoveReference(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✂️  %s\n", args[0])
		return nil
	})
}
