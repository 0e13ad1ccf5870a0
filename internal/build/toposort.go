package build

import (
	"sort"

	"github.com/jakoblorz/go-combine/internal/project"
)

// TopologicalSort orders projects so that every project comes after the
// projects it references. Only references between members of projects are
// considered. Ready projects are emitted in input order.
//
// Members of a reference cycle, and projects waiting on them, never become
// ready. They are appended in input order after everything else and also
// returned as cyclic.
func TopologicalSort(projects []*project.Project) (sorted, cyclic []*project.Project) {
	index := make(map[string]int, len(projects))
	for i, p := range projects {
		index[p.Key()] = i
	}

	indegree := make([]int, len(projects))
	dependents := make([][]int, len(projects))
	for i, p := range projects {
		seen := make(map[int]bool)
		for _, dep := range referencedProjects(p) {
			j, ok := index[dep.Key()]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range projects {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	emitted := make([]bool, len(projects))
	sorted = make([]*project.Project, 0, len(projects))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		emitted[i] = true
		sorted = append(sorted, projects[i])

		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
				sort.Ints(ready)
			}
		}
	}

	for i, p := range projects {
		if !emitted[i] {
			sorted = append(sorted, p)
			cyclic = append(cyclic, p)
		}
	}
	return sorted, cyclic
}

// Names returns the names of projects, in order.
func Names(projects []*project.Project) []string {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name()
	}
	return names
}
