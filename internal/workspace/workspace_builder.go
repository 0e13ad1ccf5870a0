package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-combine/internal/filesystem"
)

// WorkspaceBuilder helps create test workspaces
type WorkspaceBuilder struct {
	fs       *filesystem.MockFileSystem
	root     string
	projects []ProjectConfig
}

// ProjectConfig represents a Go module of a test workspace
type ProjectConfig struct {
	Name       string
	Path       string
	ModulePath string
	Requires   []string
}

// NewWorkspaceBuilder creates a new WorkspaceBuilder
func NewWorkspaceBuilder(root string) *WorkspaceBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	return &WorkspaceBuilder{
		fs:   fs,
		root: root,
	}
}

// AddProject adds a module with a main.go to the workspace. name is only the
// builder's handle; detection names the project after the last element of
// modulePath unless a project.hcl overrides it.
func (wb *WorkspaceBuilder) AddProject(name, path, modulePath string) *WorkspaceBuilder {
	wb.projects = append(wb.projects, ProjectConfig{
		Name:       name,
		Path:       path,
		ModulePath: modulePath,
	})

	projectRoot := filepath.Join(wb.root, path)
	wb.fs.AddDir(projectRoot)
	wb.fs.AddFile(filepath.Join(projectRoot, "main.go"), []byte("package main\n\nfunc main() {}\n"))

	return wb
}

// AddReference makes project require the module of dependency
func (wb *WorkspaceBuilder) AddReference(project, dependency string) *WorkspaceBuilder {
	dep := wb.find(dependency)
	if dep == nil {
		return wb
	}
	for i, p := range wb.projects {
		if p.Name == project {
			wb.projects[i].Requires = append(wb.projects[i].Requires, dep.ModulePath)
			break
		}
	}
	return wb
}

// AddFile adds a file relative to the project directory
func (wb *WorkspaceBuilder) AddFile(project, rel, content string) *WorkspaceBuilder {
	if p := wb.find(project); p != nil {
		wb.fs.AddFile(filepath.Join(wb.root, p.Path, rel), []byte(content))
	}
	return wb
}

// SetManifest writes a project.hcl next to the project's go.mod
func (wb *WorkspaceBuilder) SetManifest(project, content string) *WorkspaceBuilder {
	return wb.AddFile(project, "project.hcl", content)
}

// SetGitIgnore writes the workspace root .gitignore
func (wb *WorkspaceBuilder) SetGitIgnore(content string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, ".gitignore"), []byte(content))
	return wb
}

// ProjectDir returns the absolute directory of a project
func (wb *WorkspaceBuilder) ProjectDir(project string) string {
	if p := wb.find(project); p != nil {
		return filepath.Join(wb.root, p.Path)
	}
	return ""
}

func (wb *WorkspaceBuilder) find(name string) *ProjectConfig {
	for i := range wb.projects {
		if wb.projects[i].Name == name {
			return &wb.projects[i]
		}
	}
	return nil
}

// Build finalizes the workspace and returns the filesystem
func (wb *WorkspaceBuilder) Build() *filesystem.MockFileSystem {
	for _, p := range wb.projects {
		goMod := fmt.Sprintf("module %s\n\ngo 1.24\n", p.ModulePath)
		if len(p.Requires) > 0 {
			goMod += "\nrequire (\n"
			for _, req := range p.Requires {
				goMod += fmt.Sprintf("\t%s v0.0.0\n", req)
			}
			goMod += ")\n"
		}
		wb.fs.AddFile(filepath.Join(wb.root, p.Path, "go.mod"), []byte(goMod))
	}

	// Create go.work file
	goWork := "go 1.24\n\nuse (\n"
	for _, p := range wb.projects {
		goWork += fmt.Sprintf("\t./%s\n", p.Path)
	}
	goWork += ")\n"

	wb.fs.AddFile(filepath.Join(wb.root, "go.work"), []byte(goWork))

	return wb.fs
}

// FileSystem returns the mock filesystem
func (wb *WorkspaceBuilder) FileSystem() *filesystem.MockFileSystem {
	return wb.fs
}
