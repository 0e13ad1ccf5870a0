// Package build decides which projects have to be rebuilt, orders them so
// referenced projects come first, and drives their compilation.
package build

import (
	"github.com/jakoblorz/go-combine/internal/project"
)

// ComputeBuildClosure walks the project references of root depth first and
// returns every project on the way, root included, that needs building.
// Each project appears at most once; unresolvable references are skipped.
func ComputeBuildClosure(root *project.Project) []*project.Project {
	return walk(root, (*project.Project).NeedsBuilding)
}

// CollectReferences returns root and every project it transitively
// references, regardless of dirty state.
func CollectReferences(root *project.Project) []*project.Project {
	return walk(root, func(*project.Project) bool { return true })
}

func walk(root *project.Project, include func(*project.Project) bool) []*project.Project {
	var out []*project.Project
	visited := make(map[string]bool)

	var visit func(p *project.Project)
	visit = func(p *project.Project) {
		key := p.Key()
		if visited[key] {
			return
		}
		visited[key] = true

		if include(p) {
			out = append(out, p)
		}
		for _, dep := range referencedProjects(p) {
			visit(dep)
		}
	}

	visit(root)
	return out
}

// referencedProjects resolves the Project-kind references of p.
func referencedProjects(p *project.Project) []*project.Project {
	r := p.Resolver()
	if r == nil {
		return nil
	}

	var deps []*project.Project
	for _, name := range p.ProjectReferences() {
		if dep := r.FindProject(name); dep != nil {
			deps = append(deps, dep)
		}
	}
	return deps
}
