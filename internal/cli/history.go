package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jakoblorz/go-combine/internal/build"
	"github.com/jakoblorz/go-combine/internal/history"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/workspace"
	"github.com/spf13/cobra"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	loader *workspaceLoader
	limit  int
	format string
}

// NewHistoryCommand creates a new history command
func NewHistoryCommand(loader *workspaceLoader) *cobra.Command {
	cmd := &HistoryCommand{loader: loader}

	cobraCmd := &cobra.Command{
		Use:   "history [project]",
		Short: "Show recorded builds",
		Long: `Show the most recent builds recorded by 'combine build', newest first.
Without a project, builds of every project are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().IntVar(&cmd.limit, "limit", 10, "Maximum number of builds to show (0 for all)")
	cobraCmd.Flags().StringVar(&cmd.format, "format", "text", "Output format: text or json")

	return cobraCmd
}

// Run executes the history command
func (c *HistoryCommand) Run(cmd *cobra.Command, args []string) error {
	ws, err := c.loader.load(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := cmd.OutOrStdout()
	dbPath := filepath.Join(stateDir(cmd, ws), history.FileName)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintln(out, "No builds recorded")
		return nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open build history: %w", err)
	}
	defer store.Close()

	var records []models.BuildRecord
	if len(args) > 0 {
		if _, err := ws.GetProject(args[0]); err != nil {
			return fmt.Errorf("project not found: %w", err)
		}
		records, err = store.ForProject(cmd.Context(), args[0], c.limit)
	} else {
		records, err = store.Recent(cmd.Context(), c.limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read build history: %w", err)
	}

	switch c.format {
	case "json":
		if records == nil {
			records = []models.BuildRecord{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "text":
		outputHistoryText(out, records)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text or json)", c.format)
	}
}

func outputHistoryText(out io.Writer, records []models.BuildRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No builds recorded")
		return
	}

	for _, r := range records {
		marker := "✅"
		if !r.Succeeded {
			marker = "❌"
		}
		fmt.Fprintf(out, "%s %s  %s (%s)  %s  %s, %s  [%s]\n",
			marker,
			r.StartedAt.Local().Format(time.DateTime),
			r.Project,
			r.Configuration,
			r.Duration.Round(time.Millisecond),
			plural(r.Errors, "error"),
			plural(r.Warnings, "warning"),
			r.ID)
	}
}

// historyOptions opens the history store of ws when enabled. The returned
// func closes it.
func historyOptions(cmd *cobra.Command, ws *workspace.Workspace, enabled bool) ([]build.Option, func(), error) {
	if !enabled {
		return nil, func() {}, nil
	}

	dir := stateDir(cmd, ws)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store, err := history.Open(filepath.Join(dir, history.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open build history: %w", err)
	}

	return []build.Option{build.WithHistory(store)}, func() { _ = store.Close() }, nil
}
