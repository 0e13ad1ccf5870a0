// Package projectfile reads and writes project manifests (project.hcl) and
// the workspace manifest (combine.hcl).
package projectfile

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
)

const (
	// FileName is the project manifest inside a project directory
	FileName = "project.hcl"

	// WorkspaceFileName marks a workspace root
	WorkspaceFileName = "combine.hcl"
)

// Definition is the decoded content of a project manifest. File paths are
// kept as written, relative to the manifest directory.
type Definition struct {
	Name                string
	Type                models.ProjectType
	Description         string
	Namespace           string
	ActiveConfiguration string
	Files               []*models.ProjectFile
	References          []*models.ProjectReference
	Configurations      []*models.Configuration
}

// WorkspaceManifest is the decoded content of combine.hcl.
type WorkspaceManifest struct {
	Name     string
	Projects []string
}

// Parse decodes a project manifest.
func Parse(data []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclProjectFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if parsed.Project == nil {
		return nil, fmt.Errorf("%s: missing project block", filename)
	}

	return parsed.Project.definition(filename)
}

func (hp *hclProject) definition(filename string) (*Definition, error) {
	projectType, err := models.ParseProjectType(hp.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	def := &Definition{
		Name:                hp.Name,
		Type:                projectType,
		Description:         hp.Description,
		Namespace:           hp.Namespace,
		ActiveConfiguration: hp.ActiveConfiguration,
	}

	seenFiles := make(map[string]bool)
	for _, f := range hp.Files {
		action, err := models.ParseBuildAction(f.Action)
		if err != nil {
			return nil, fmt.Errorf("%s: file %q: %w", filename, f.Path, err)
		}
		if seenFiles[f.Path] {
			return nil, fmt.Errorf("%s: duplicate file %q", filename, f.Path)
		}
		seenFiles[f.Path] = true
		def.Files = append(def.Files, &models.ProjectFile{Path: f.Path, BuildAction: action})
	}

	seenRefs := make(map[string]bool)
	for _, r := range hp.References {
		refType, err := models.ParseReferenceType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: reference %q: %w", filename, r.Target, err)
		}
		if seenRefs[r.Target] {
			return nil, fmt.Errorf("%s: duplicate reference %q", filename, r.Target)
		}
		seenRefs[r.Target] = true

		ref := models.NewProjectReference(refType, r.Target)
		if r.LocalCopy != nil {
			ref.LocalCopy = *r.LocalCopy
		}
		def.References = append(def.References, ref)
	}

	for _, c := range hp.Configurations {
		def.Configurations = append(def.Configurations, &models.Configuration{
			Name:            c.Name,
			OutputDirectory: c.OutputDirectory,
			OutputName:      c.OutputName,
			BuildCommand:    c.BuildCommand,
			ExecuteCommand:  c.ExecuteCommand,
			Arguments:       c.Arguments,
			Env:             c.Env,
		})
	}

	if def.ActiveConfiguration != "" && def.configuration(def.ActiveConfiguration) == nil {
		return nil, fmt.Errorf("%s: active configuration %q is not defined", filename, def.ActiveConfiguration)
	}

	return def, nil
}

func (d *Definition) configuration(name string) *models.Configuration {
	for _, c := range d.Configurations {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Load reads and decodes the manifest at path.
func Load(fs filesystem.FileSystem, path string) (*Definition, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Overlay applies over on top of base: files and references are merged by
// path and target with over winning, configurations declared in over replace
// base's, and non-empty scalar fields of over win.
func Overlay(base, over *Definition) *Definition {
	out := *base

	if over.Name != "" {
		out.Name = over.Name
	}
	if over.Type != "" && over.Type != models.ProjectTypeGeneric {
		out.Type = over.Type
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	if over.Namespace != "" {
		out.Namespace = over.Namespace
	}
	if over.ActiveConfiguration != "" {
		out.ActiveConfiguration = over.ActiveConfiguration
	}

	out.Files = append([]*models.ProjectFile(nil), base.Files...)
	for _, f := range over.Files {
		replaced := false
		for i, existing := range out.Files {
			if filepath.Clean(existing.Path) == filepath.Clean(f.Path) {
				out.Files[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out.Files = append(out.Files, f)
		}
	}

	out.References = append([]*models.ProjectReference(nil), base.References...)
	for _, r := range over.References {
		replaced := false
		for i, existing := range out.References {
			if existing.Reference == r.Reference {
				out.References[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out.References = append(out.References, r)
		}
	}

	if len(over.Configurations) > 0 {
		out.Configurations = over.Configurations
		if over.ActiveConfiguration == "" {
			out.ActiveConfiguration = ""
		}
	}

	return &out
}

// Deserialize creates a project from a definition. The project starts with
// an unknown dirty state and references are bound to the options' resolver.
func Deserialize(fs filesystem.FileSystem, def *Definition, path string, opts ...project.Option) *project.Project {
	all := []project.Option{
		project.WithType(def.Type),
		project.WithDescription(def.Description, def.Namespace),
		project.WithFiles(def.Files...),
		project.WithReferences(def.References...),
		project.WithConfigurations(def.Configurations...),
		project.WithActiveConfiguration(def.ActiveConfiguration),
	}
	p := project.New(fs, def.Name, path, append(all, opts...)...)
	p.ResetDirtyState()
	return p
}

// LoadProject reads the manifest at path and creates the project.
func LoadProject(fs filesystem.FileSystem, path string, opts ...project.Option) (*project.Project, error) {
	def, err := Load(fs, path)
	if err != nil {
		return nil, err
	}
	return Deserialize(fs, def, path, opts...), nil
}

// ParseWorkspace decodes a workspace manifest.
func ParseWorkspace(data []byte, filename string) (*WorkspaceManifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclWorkspaceFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	return &WorkspaceManifest{Name: parsed.Name, Projects: parsed.Projects}, nil
}
