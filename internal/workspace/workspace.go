package workspace

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/projectfile"
	"golang.org/x/mod/modfile"
)

// Workspace represents a set of projects sharing one root, one event bus and
// one compiler. It resolves project references by name for every project it
// owns.
type Workspace struct {
	fs           filesystem.FileSystem
	Name         string
	RootPath     string
	WorkFilePath string
	ManifestPath string
	Projects     []*project.Project

	bus      *events.Bus
	compiler project.Compiler
	locator  RootLocator
}

// Option configures workspace behavior.
type Option func(*Workspace)

// WithBus shares bus between all projects of the workspace.
func WithBus(bus *events.Bus) Option {
	return func(w *Workspace) {
		w.bus = bus
	}
}

// WithCompiler sets the compiler every project builds with.
func WithCompiler(c project.Compiler) Option {
	return func(w *Workspace) {
		w.compiler = c
	}
}

// WithRootLocator lets l decide the workspace root before walking up from
// the working directory.
func WithRootLocator(l RootLocator) Option {
	return func(w *Workspace) {
		w.locator = l
	}
}

// New creates a new Workspace instance.
func New(fs filesystem.FileSystem, options ...Option) *Workspace {
	ws := &Workspace{
		fs:       fs,
		Projects: []*project.Project{},
	}

	for _, option := range options {
		option(ws)
	}

	if ws.bus == nil {
		ws.bus = events.NewBus()
	}

	return ws
}

// Detect finds and loads the workspace from the current directory.
func (w *Workspace) Detect() error {
	root, err := w.findWorkspaceRoot()
	if err != nil {
		return err
	}

	w.RootPath = root
	if path := filepath.Join(root, "go.work"); w.fs.Exists(path) {
		w.WorkFilePath = path
	}
	if path := filepath.Join(root, projectfile.WorkspaceFileName); w.fs.Exists(path) {
		w.ManifestPath = path
	}
	w.Name = filepath.Base(root)

	if err := w.loadProjects(); err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	return nil
}

// findWorkspaceRoot walks up the directory tree looking for combine.hcl or go.work.
func (w *Workspace) findWorkspaceRoot() (string, error) {
	if w.locator != nil {
		root, err := w.locator.Locate()
		if err != nil {
			return "", err
		}
		if root != "" {
			return root, nil
		}
	}

	cwd, err := w.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	root, found := findRootUp(w.fs, cwd)
	if !found {
		return "", fmt.Errorf("workspace not found")
	}
	return root, nil
}

// candidate is a project definition found during detection, before the
// project itself is created.
type candidate struct {
	def        *projectfile.Definition
	path       string
	modulePath string
	requires   []string
}

func (w *Workspace) loadProjects() error {
	var manifest *projectfile.WorkspaceManifest
	if w.ManifestPath != "" {
		data, err := w.fs.ReadFile(w.ManifestPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", projectfile.WorkspaceFileName, err)
		}
		manifest, err = projectfile.ParseWorkspace(data, w.ManifestPath)
		if err != nil {
			return err
		}
		if manifest.Name != "" {
			w.Name = manifest.Name
		}
	}

	var candidates []*candidate
	if w.WorkFilePath != "" {
		goCandidates, err := w.loadGoCandidates()
		if err != nil {
			return err
		}
		candidates = append(candidates, goCandidates...)
	}

	if manifest != nil {
		manifestCandidates, err := w.loadManifestCandidates(manifest.Projects)
		if err != nil {
			return err
		}
		candidates = mergeCandidates(candidates, manifestCandidates)
	}

	if len(candidates) == 0 {
		return fmt.Errorf("no projects found in workspace")
	}

	// generated names are deduplicated first; names set in project.hcl
	// must be unique on their own
	dedupeProjectNames(candidates)
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if w.fs.Exists(c.path) && c.modulePath != "" {
			over, err := projectfile.Load(w.fs, c.path)
			if err != nil {
				return err
			}
			c.def = projectfile.Overlay(c.def, over)
		}
		if seen[c.def.Name] {
			return fmt.Errorf("duplicate project name %q", c.def.Name)
		}
		seen[c.def.Name] = true
	}
	linkModuleReferences(candidates)

	projects := make([]*project.Project, 0, len(candidates))
	for _, c := range candidates {
		projects = append(projects, projectfile.Deserialize(w.fs, c.def, c.path, w.ProjectOptions()...))
	}

	w.Projects = projects
	return nil
}

// ProjectOptions binds a new project to the workspace resolver, bus and compiler.
func (w *Workspace) ProjectOptions() []project.Option {
	opts := []project.Option{project.WithResolver(w), project.WithBus(w.bus)}
	if w.compiler != nil {
		opts = append(opts, project.WithCompiler(w.compiler))
	}
	return opts
}

// loadGoCandidates parses go.work and prepares a project per used module.
func (w *Workspace) loadGoCandidates() ([]*candidate, error) {
	data, err := w.fs.ReadFile(w.WorkFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.work: %w", err)
	}

	workFile, err := modfile.ParseWork(w.WorkFilePath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.work: %w", err)
	}

	ignore, err := w.loadRootGitIgnore()
	if err != nil {
		return nil, err
	}

	var candidates []*candidate
	for _, use := range workFile.Use {
		projectPath := filepath.Join(w.RootPath, use.Path)

		c, err := w.loadGoCandidate(projectPath, ignore)
		if err != nil {
			return nil, fmt.Errorf("failed to load project at %s: %w", projectPath, err)
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

// loadGoCandidate loads a single Go module from a directory.
func (w *Workspace) loadGoCandidate(projectPath string, ignore gitignore.GitIgnore) (*candidate, error) {
	goModPath := filepath.Join(projectPath, "go.mod")
	if !w.fs.Exists(goModPath) {
		return nil, fmt.Errorf("go.mod not found at %s", goModPath)
	}

	data, err := w.fs.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	modFile, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	configurations := models.DefaultConfigurations()
	files, err := w.discoverFiles(projectPath, ignore, outputRoots(configurations))
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var requires []string
	for _, req := range modFile.Require {
		requires = append(requires, req.Mod.Path)
	}

	modulePath := modFile.Module.Mod.Path
	return &candidate{
		def: &projectfile.Definition{
			Name:           extractProjectName(modulePath),
			Type:           models.ProjectTypeGo,
			Namespace:      modulePath,
			Files:          files,
			Configurations: configurations,
		},
		path:       filepath.Join(projectPath, projectfile.FileName),
		modulePath: modulePath,
		requires:   requires,
	}, nil
}

// loadManifestCandidates loads the project manifests combine.hcl lists.
// Entries may name a project directory or the manifest itself.
func (w *Workspace) loadManifestCandidates(paths []string) ([]*candidate, error) {
	var candidates []*candidate
	for _, rel := range paths {
		path := filepath.Join(w.RootPath, rel)
		if filepath.Ext(path) != ".hcl" {
			path = filepath.Join(path, projectfile.FileName)
		}

		def, err := projectfile.Load(w.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load project at %s: %w", rel, err)
		}
		if len(def.Configurations) == 0 {
			def.Configurations = models.DefaultConfigurations()
			def.ActiveConfiguration = ""
		}

		candidates = append(candidates, &candidate{def: def, path: path})
	}
	return candidates, nil
}

// discoverFiles lists the default files of a Go module: sources compile,
// tests are excluded, and go.mod/go.sum are build inputs. Nested modules,
// hidden directories, testdata and output directories are skipped.
func (w *Workspace) discoverFiles(dir string, ignore gitignore.GitIgnore, skip map[string]bool) ([]*models.ProjectFile, error) {
	var files []*models.ProjectFile
	err := w.fs.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == dir {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}

		if entry.IsDir() {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || skip[filepath.ToSlash(rel)] {
				return filepath.SkipDir
			}
			if w.fs.Exists(filepath.Join(path, "go.mod")) {
				return filepath.SkipDir
			}
		}

		if ignore != nil {
			if rootRel, err := filepath.Rel(w.RootPath, path); err == nil {
				if match := ignore.Relative(filepath.ToSlash(rootRel), entry.IsDir()); match != nil && match.Ignore() {
					if entry.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
		}

		if entry.IsDir() {
			return nil
		}

		action, ok := defaultBuildAction(entry.Name())
		if !ok {
			return nil
		}
		files = append(files, &models.ProjectFile{Path: rel, BuildAction: action})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func defaultBuildAction(name string) (models.BuildAction, bool) {
	switch {
	case name == "go.mod" || name == "go.sum":
		return models.BuildActionCompile, true
	case strings.HasSuffix(name, "_test.go"):
		return models.BuildActionExclude, true
	case strings.HasSuffix(name, ".go"):
		return models.BuildActionCompile, true
	default:
		return "", false
	}
}

// outputRoots returns the first literal path element of every relative
// output directory, e.g. "bin" for "bin/{{ .Configuration }}".
func outputRoots(cfgs []*models.Configuration) map[string]bool {
	roots := make(map[string]bool)
	for _, cfg := range cfgs {
		dir := filepath.ToSlash(cfg.OutputDirectory)
		if dir == "" || filepath.IsAbs(dir) {
			continue
		}
		first := strings.SplitN(dir, "/", 2)[0]
		if first == "" || first == "." || strings.Contains(first, "{{") {
			continue
		}
		roots[first] = true
	}
	return roots
}

// linkModuleReferences adds a project reference for every go.mod require that
// names another module of the workspace, unless project.hcl already declares
// one.
func linkModuleReferences(candidates []*candidate) {
	byModule := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if c.modulePath != "" {
			byModule[c.modulePath] = c.def.Name
		}
	}

	for _, c := range candidates {
		for _, req := range c.requires {
			name, ok := byModule[req]
			if !ok || req == c.modulePath || hasReference(c.def, name) {
				continue
			}
			c.def.References = append(c.def.References, models.NewProjectReference(models.ReferenceProject, name))
		}
	}
}

func hasReference(def *projectfile.Definition, target string) bool {
	for _, r := range def.References {
		if r.Reference == target {
			return true
		}
	}
	return false
}

func mergeCandidates(normal, additional []*candidate) []*candidate {
	candidates := append([]*candidate{}, normal...)
	if len(additional) == 0 {
		return candidates
	}

	byManifest := make(map[string]struct{}, len(normal))
	for _, c := range normal {
		byManifest[c.path] = struct{}{}
	}

	for _, c := range additional {
		if _, exists := byManifest[c.path]; exists {
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates
}

func (w *Workspace) loadRootGitIgnore() (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(w.RootPath, ".gitignore")
	if !w.fs.Exists(ignorePath) {
		return nil, nil
	}

	data, err := w.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return gitignore.New(bytes.NewReader(data), w.RootPath, nil), nil
}

func dedupeProjectNames(candidates []*candidate) {
	counts := make(map[string]int)
	for _, c := range candidates {
		counts[c.def.Name]++
	}

	used := make(map[string]int)
	for _, c := range candidates {
		name := c.def.Name
		if counts[c.def.Name] > 1 {
			name = fmt.Sprintf("%s-%s", c.def.Name, string(c.def.Type))
		}

		if used[name] > 0 {
			name = fmt.Sprintf("%s-%d", name, used[name]+1)
		}

		used[name]++
		c.def.Name = name
	}
}

// FindProject returns the project called name, or nil.
func (w *Workspace) FindProject(name string) *project.Project {
	for _, p := range w.Projects {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// GetProject returns a project by name.
func (w *Workspace) GetProject(name string) (*project.Project, error) {
	if p := w.FindProject(name); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("project %s not found in workspace", name)
}

// GetProjectNames returns a list of all project names.
func (w *Workspace) GetProjectNames() []string {
	names := make([]string, len(w.Projects))
	for i, p := range w.Projects {
		names[i] = p.Name()
	}
	return names
}

// AddProject adds p to the workspace and binds it to the workspace's
// resolver, bus and compiler.
func (w *Workspace) AddProject(p *project.Project) error {
	if w.FindProject(p.Name()) != nil {
		return fmt.Errorf("duplicate project name %q", p.Name())
	}
	p.SetResolver(w)
	if w.compiler != nil && p.Compiler() == nil {
		p.SetCompiler(w.compiler)
	}
	w.Projects = append(w.Projects, p)
	return nil
}

// RemoveProject drops the named project. References to it stay and resolve
// to nothing.
func (w *Workspace) RemoveProject(name string) error {
	for i, p := range w.Projects {
		if p.Name() == name {
			p.Close()
			w.Projects = append(w.Projects[:i], w.Projects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("project %s not found in workspace", name)
}

// RenameProject renames a project and rewrites every project reference
// pointing at the old name.
func (w *Workspace) RenameProject(oldName, newName string) error {
	p, err := w.GetProject(oldName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if w.FindProject(newName) != nil {
		return fmt.Errorf("duplicate project name %q", newName)
	}

	p.SetName(newName)
	for _, other := range w.Projects {
		if err := other.RenameReferences(oldName, newName); err != nil {
			return fmt.Errorf("failed to rename references in %s: %w", other.Name(), err)
		}
	}
	return nil
}

// Bus returns the event bus shared by the workspace's projects.
func (w *Workspace) Bus() *events.Bus {
	return w.bus
}

// Close unsubscribes every project from the bus.
func (w *Workspace) Close() {
	for _, p := range w.Projects {
		p.Close()
	}
}

// StateDir returns the directory holding build history and other state.
func (w *Workspace) StateDir() string {
	return filepath.Join(w.RootPath, ".combine")
}

// extractProjectName extracts the project name from a module path.
// e.g., "github.com/user/project" -> "project".
func extractProjectName(modulePath string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return modulePath
}
