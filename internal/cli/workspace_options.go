package cli

import (
	"fmt"
	"strconv"

	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/spf13/cobra"
)

const (
	useGoEnvFlag = "use-go-env"
	stateDirFlag = "state-dir"
)

// workspaceLoader detects the workspace a command operates on.
type workspaceLoader struct {
	fs      filesystem.FileSystem
	options []workspace.Option
}

func (l *workspaceLoader) load(cmd *cobra.Command) (*workspace.Workspace, error) {
	opts := append([]workspace.Option{}, l.options...)
	opts = append(opts, workspaceOptionsFromCmd(l.fs, cmd)...)

	ws := workspace.New(l.fs, opts...)
	if err := ws.Detect(); err != nil {
		return nil, fmt.Errorf("failed to detect workspace: %w", err)
	}
	return ws, nil
}

func workspaceOptionsFromCmd(fs filesystem.FileSystem, cmd *cobra.Command) []workspace.Option {
	if boolFlag(cmd, useGoEnvFlag) {
		return []workspace.Option{workspace.WithRootLocator(workspace.NewGoWorkLocator(fs))}
	}

	return nil
}

// stateDir returns the --state-dir flag or the workspace default.
func stateDir(cmd *cobra.Command, ws *workspace.Workspace) string {
	if cmd != nil {
		if flag := cmd.Flag(stateDirFlag); flag != nil && flag.Value.String() != "" {
			return flag.Value.String()
		}
	}
	return ws.StateDir()
}

func boolFlag(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	flag := cmd.Flag(name)
	if flag == nil {
		return false
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false
	}

	return enabled
}
