package build

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
)

type registry map[string]*project.Project

func (r registry) FindProject(name string) *project.Project {
	return r[name]
}

// fakeCompiler writes the project output and reports canned diagnostics.
type fakeCompiler struct {
	fs *filesystem.MockFileSystem

	mu          sync.Mutex
	calls       []string
	diagnostics map[string][]models.Diagnostic
	errs        map[string]error
}

func (c *fakeCompiler) Compile(_ context.Context, p *project.Project, _ progress.Monitor) (*models.CompilerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, p.Name())
	if err := c.errs[p.Name()]; err != nil {
		return nil, err
	}
	c.fs.Touch(p.OutputFile())
	return &models.CompilerResult{Diagnostics: c.diagnostics[p.Name()]}, nil
}

func (c *fakeCompiler) failWith(name string, msg string) {
	c.diagnostics[name] = append(c.diagnostics[name], models.Diagnostic{
		File:     name + ".go",
		Line:     1,
		Severity: models.SeverityError,
		Message:  msg,
	})
}

type fixture struct {
	t        *testing.T
	fs       *filesystem.MockFileSystem
	bus      *events.Bus
	reg      registry
	compiler *fakeCompiler
}

func newFixture(t *testing.T) *fixture {
	fs := filesystem.NewMockFileSystem()
	return &fixture{
		t:   t,
		fs:  fs,
		bus: events.NewBus(),
		reg: registry{},
		compiler: &fakeCompiler{
			fs:          fs,
			diagnostics: map[string][]models.Diagnostic{},
			errs:        map[string]error{},
		},
	}
}

// project creates /ws/<name> with one source file and an output at /ws/<name>/bin/<name>.
func (f *fixture) project(name string, refs ...string) *project.Project {
	f.t.Helper()

	var references []*models.ProjectReference
	for _, r := range refs {
		references = append(references, models.NewProjectReference(models.ReferenceProject, r))
	}

	dir := filepath.Join("/ws", name)
	f.fs.AddFile(filepath.Join(dir, "main.go"), nil)

	p := project.New(f.fs, name, filepath.Join(dir, "project.hcl"),
		project.WithResolver(f.reg),
		project.WithBus(f.bus),
		project.WithCompiler(f.compiler),
		project.WithFiles(&models.ProjectFile{Path: "main.go"}),
		project.WithReferences(references...),
		project.WithConfigurations(&models.Configuration{
			Name:            "Debug",
			OutputDirectory: "bin",
			OutputName:      "{{ .Project }}",
		}),
	)
	f.reg[name] = p
	f.t.Cleanup(p.Close)
	return p
}

func (f *fixture) calls() []string {
	f.compiler.mu.Lock()
	defer f.compiler.mu.Unlock()
	return append([]string(nil), f.compiler.calls...)
}

type memoryHistory struct {
	records []models.BuildRecord
	err     error
}

func (h *memoryHistory) Record(_ context.Context, r models.BuildRecord) error {
	h.records = append(h.records, r)
	return h.err
}

var errBoom = errors.New("boom")
