// Package project models a compilable unit: its files, its references to
// other projects and binaries, its build configurations and the dirty state
// that decides whether it has to be rebuilt.
package project

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
)

var (
	ErrNoActiveConfiguration = errors.New("no active configuration")
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrFileNotFound          = errors.New("file not in project")
	ErrReferenceNotFound     = errors.New("reference not in project")
)

// Resolver looks up projects by name. The workspace implements it.
type Resolver interface {
	FindProject(name string) *Project
}

// Compiler is the per-project compilation hook. Diagnostics go into the
// result; a returned error means the hook itself could not run.
type Compiler interface {
	Compile(ctx context.Context, p *Project, monitor progress.Monitor) (*models.CompilerResult, error)
}

// Project is a compilable unit identified by its name and manifest path.
type Project struct {
	fs filesystem.FileSystem

	mu             sync.RWMutex
	name           string
	filePath       string
	projectType    models.ProjectType
	description    string
	namespace      string
	files          *FileCollection
	references     *ReferenceCollection
	configurations []*models.Configuration
	active         string
	resolver       Resolver
	compiler       Compiler

	bus  *events.Bus
	subs []*events.Subscription

	dirty atomic.Int32
}

// Option configures a Project
type Option func(*Project)

// WithResolver sets the lookup used for Project-kind references
func WithResolver(r Resolver) Option {
	return func(p *Project) { p.resolver = r }
}

// WithCompiler sets the compilation hook
func WithCompiler(c Compiler) Option {
	return func(p *Project) { p.compiler = c }
}

// WithBus sets the bus change notifications are published on
func WithBus(bus *events.Bus) Option {
	return func(p *Project) { p.bus = bus }
}

// WithType sets the project type
func WithType(t models.ProjectType) Option {
	return func(p *Project) { p.projectType = t }
}

// WithDescription sets the description and default namespace
func WithDescription(description, namespace string) Option {
	return func(p *Project) {
		p.description = description
		p.namespace = namespace
	}
}

// WithFiles adds files without publishing events or touching the dirty state.
func WithFiles(files ...*models.ProjectFile) Option {
	return func(p *Project) {
		for _, f := range files {
			p.files.add(p.normalizeFile(f))
		}
	}
}

// WithReferences adds references without publishing events or touching the
// dirty state.
func WithReferences(refs ...*models.ProjectReference) Option {
	return func(p *Project) {
		for _, r := range refs {
			if p.references.Get(r.Reference) == nil {
				p.references.add(r)
			}
		}
	}
}

// WithConfigurations replaces the configurations. The first one becomes
// active unless WithActiveConfiguration names another.
func WithConfigurations(cfgs ...*models.Configuration) Option {
	return func(p *Project) {
		p.configurations = cfgs
	}
}

// WithActiveConfiguration selects the active configuration by name
func WithActiveConfiguration(name string) Option {
	return func(p *Project) { p.active = name }
}

// New creates a project. filePath is the manifest path; its directory is the
// project base directory.
func New(fs filesystem.FileSystem, name, filePath string, opts ...Option) *Project {
	p := &Project{
		fs:          fs,
		name:        name,
		filePath:    filepath.Clean(filePath),
		projectType: models.ProjectTypeGeneric,
		files:       newFileCollection(),
		references:  newReferenceCollection(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.active == "" && len(p.configurations) > 0 {
		p.active = p.configurations[0].Name
	}

	if p.bus != nil {
		p.subs = append(p.subs, p.bus.Subscribe(events.BuildFinished, p.onReferenceBuilt))
	}
	return p
}

// Close releases the project's bus subscriptions.
func (p *Project) Close() {
	p.mu.Lock()
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// onReferenceBuilt invalidates the project when a project it references was
// rebuilt, since the referenced output is now newer than ours.
func (p *Project) onReferenceBuilt(e events.Event) error {
	if e.Project == p.Name() {
		return nil
	}
	p.mu.RLock()
	ref := p.references.Get(e.Project)
	p.mu.RUnlock()

	if ref != nil && ref.Type == models.ReferenceProject {
		p.Invalidate()
	}
	return nil
}

// Name returns the logical project name
func (p *Project) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName renames the project. References held by other projects are
// rewritten by the workspace.
func (p *Project) SetName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
	_ = p.bus.Publish(events.Event{Kind: events.ProjectModified, Project: name})
}

// FilePath returns the manifest path
func (p *Project) FilePath() string {
	return p.filePath
}

// BaseDir returns the directory relative paths are resolved against
func (p *Project) BaseDir() string {
	return filepath.Dir(p.filePath)
}

// Key returns the identity used to de-duplicate projects during graph walks.
func (p *Project) Key() string {
	return p.Name() + "\x00" + p.filePath
}

// Type returns the project type
func (p *Project) Type() models.ProjectType {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.projectType
}

// Description returns the free-form description
func (p *Project) Description() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.description
}

// Namespace returns the default namespace
func (p *Project) Namespace() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.namespace
}

// FileSystem returns the filesystem the project reads timestamps from
func (p *Project) FileSystem() filesystem.FileSystem {
	return p.fs
}

// Compiler returns the compilation hook, or nil
func (p *Project) Compiler() Compiler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.compiler
}

// SetCompiler replaces the compilation hook
func (p *Project) SetCompiler(c Compiler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.compiler = c
}

// Resolver returns the project lookup, or nil
func (p *Project) Resolver() Resolver {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolver
}

// SetResolver replaces the project lookup
func (p *Project) SetResolver(r Resolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolver = r
}

// Bus returns the bus the project publishes on, or nil
func (p *Project) Bus() *events.Bus {
	return p.bus
}

// resolve finds a referenced project, ignoring unresolvable names.
func (p *Project) resolve(name string) *Project {
	r := p.Resolver()
	if r == nil {
		return nil
	}
	return r.FindProject(name)
}

// notify publishes e followed by ProjectModified.
func (p *Project) notify(e events.Event) error {
	e.Project = p.Name()
	if err := p.bus.Publish(e); err != nil {
		return err
	}
	return p.bus.Publish(events.Event{Kind: events.ProjectModified, Project: e.Project})
}
