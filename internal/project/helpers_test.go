package project

import (
	"path/filepath"
	"testing"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
)

// registry is a minimal Resolver for tests.
type registry map[string]*Project

func (r registry) FindProject(name string) *Project {
	return r[name]
}

type fixture struct {
	t   *testing.T
	fs  *filesystem.MockFileSystem
	bus *events.Bus
	reg registry
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:   t,
		fs:  filesystem.NewMockFileSystem(),
		bus: events.NewBus(),
		reg: registry{},
	}
}

// project creates a project under /ws/<name> whose output is /ws/<name>/bin/<name>.
func (f *fixture) project(name string, opts ...Option) *Project {
	f.t.Helper()
	base := []Option{
		WithResolver(f.reg),
		WithBus(f.bus),
		WithConfigurations(&models.Configuration{
			Name:            "Debug",
			OutputDirectory: "bin",
			OutputName:      "{{ .Project }}",
		}),
	}
	p := New(f.fs, name, filepath.Join("/ws", name, "project.hcl"), append(base, opts...)...)
	f.reg[name] = p
	f.t.Cleanup(p.Close)
	return p
}

// build simulates a compiler writing the project output.
func (f *fixture) build(p *Project) {
	f.t.Helper()
	out := p.OutputFile()
	if out == "" {
		f.t.Fatalf("project %s has no output file", p.Name())
	}
	f.fs.Touch(out)
	p.MarkBuilt()
}

func (f *fixture) record(kinds ...events.Kind) *[]events.Event {
	var got []events.Event
	for _, k := range kinds {
		f.bus.Subscribe(k, func(e events.Event) error {
			got = append(got, e)
			return nil
		})
	}
	return &got
}
