package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/workspace"
)

// contextEnvVar carries the project status JSON into commands run by
// 'combine each'.
const contextEnvVar = "COMBINE_CONTEXT"

// resolveProjectName picks the project a command works on: the explicit
// name, then the context exported by 'combine each', then the project whose
// directory contains the working directory.
func resolveProjectName(fs filesystem.FileSystem, ws *workspace.Workspace, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if status, err := readProjectContextFromEnv(); err == nil {
		return status.Project, nil
	}

	if p := projectForWorkingDir(fs, ws); p != nil {
		return p.Name(), nil
	}

	return "", fmt.Errorf("no project specified (pass a project name, set %s, or run inside a project directory)", contextEnvVar)
}

func resolveProject(fs filesystem.FileSystem, ws *workspace.Workspace, explicit string) (*project.Project, error) {
	name, err := resolveProjectName(fs, ws, explicit)
	if err != nil {
		return nil, err
	}

	p, err := ws.GetProject(name)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	return p, nil
}

// projectForWorkingDir returns the project with the deepest base directory
// containing the working directory.
func projectForWorkingDir(fs filesystem.FileSystem, ws *workspace.Workspace) *project.Project {
	cwd, err := fs.Getwd()
	if err != nil {
		return nil
	}

	var best *project.Project
	for _, p := range ws.Projects {
		rel, err := filepath.Rel(p.BaseDir(), cwd)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(p.BaseDir()) > len(best.BaseDir()) {
			best = p
		}
	}
	return best
}

// projectArg returns the first positional argument, if any.
func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// buildStatus snapshots the state of p.
func buildStatus(fs filesystem.FileSystem, p *project.Project) *models.ProjectStatus {
	status := &models.ProjectStatus{
		Project:       p.Name(),
		ProjectPath:   p.BaseDir(),
		Type:          p.Type(),
		Configuration: p.ActiveConfigurationName(),
		OutputFile:    p.OutputFile(),
		NeedsBuilding: p.NeedsBuilding(),
		References:    []string{},
	}
	status.HasOutput = status.OutputFile != "" && fs.Exists(status.OutputFile)

	for _, f := range p.Files() {
		if f.IsBuildInput() {
			status.Files++
		}
	}
	for _, r := range p.References() {
		status.References = append(status.References, r.String())
	}

	return status
}

func buildStatuses(fs filesystem.FileSystem, ws *workspace.Workspace) []*models.ProjectStatus {
	statuses := make([]*models.ProjectStatus, 0, len(ws.Projects))
	for _, p := range ws.Projects {
		statuses = append(statuses, buildStatus(fs, p))
	}
	return statuses
}

func parseFilters(filters []string) ([]models.FilterType, error) {
	if len(filters) == 0 {
		return []models.FilterType{models.FilterAll}, nil
	}

	out := make([]models.FilterType, 0, len(filters))
	for _, f := range filters {
		ft, err := models.ParseFilterType(f)
		if err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, nil
}

// filterStatuses applies AND logic across filters.
func filterStatuses(statuses []*models.ProjectStatus, filters []models.FilterType) []*models.ProjectStatus {
	if len(filters) == 0 {
		return statuses
	}

	for _, f := range filters {
		if f == models.FilterAll {
			return statuses
		}
	}

	filtered := make([]*models.ProjectStatus, 0, len(statuses))
	for _, status := range statuses {
		matches := true
		for _, filter := range filters {
			if !filter.MatchesStatus(status) {
				matches = false
				break
			}
		}
		if matches {
			filtered = append(filtered, status)
		}
	}

	return filtered
}

// readProjectContextFromEnv reads the project status exported by
// 'combine each'.
func readProjectContextFromEnv() (*models.ProjectStatus, error) {
	env := os.Getenv(contextEnvVar)
	if env == "" {
		return nil, fmt.Errorf("no context in %s env var", contextEnvVar)
	}

	var status models.ProjectStatus
	if err := json.Unmarshal([]byte(env), &status); err != nil {
		return nil, fmt.Errorf("failed to parse context JSON from env: %w", err)
	}

	if status.Project == "" {
		return nil, fmt.Errorf("invalid context: project name is required")
	}

	return &status, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
