package project

import (
	"time"

	"github.com/jakoblorz/go-combine/internal/models"
)

// DirtyState is the cached answer to "does this project need building".
type DirtyState int32

const (
	// StateUnknown means the state has not been computed since loading
	StateUnknown DirtyState = iota
	// StateClean means the last computation or build found nothing to do
	StateClean
	// StateDirty sticks until the next build attempt
	StateDirty
)

func (s DirtyState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// DirtyState returns the cached state without recomputing it.
func (p *Project) DirtyState() DirtyState {
	return DirtyState(p.dirty.Load())
}

// Invalidate marks the project dirty.
func (p *Project) Invalidate() {
	p.dirty.Store(int32(StateDirty))
}

// ResetDirtyState forgets the cached state, as after loading.
func (p *Project) ResetDirtyState() {
	p.dirty.Store(int32(StateUnknown))
}

// MarkBuilt records a completed build attempt, successful or not.
func (p *Project) MarkBuilt() {
	p.dirty.Store(int32(StateClean))
}

// NeedsBuilding reports whether the project has to be rebuilt. A dirty
// project answers immediately; otherwise the state is recomputed from file
// timestamps and referenced projects.
func (p *Project) NeedsBuilding() bool {
	return p.needsBuilding(map[*Project]bool{})
}

// CheckNeedsBuild recomputes the dirty state and caches it. It never clears
// a dirty project; only MarkBuilt does.
func (p *Project) CheckNeedsBuild() bool {
	return p.checkNeedsBuild(map[*Project]bool{})
}

// visited holds the projects on the current evaluation path; a project met
// again through a reference cycle reports false.
func (p *Project) needsBuilding(visited map[*Project]bool) bool {
	if p.DirtyState() == StateDirty {
		return true
	}
	return p.checkNeedsBuild(visited)
}

func (p *Project) checkNeedsBuild(visited map[*Project]bool) bool {
	if visited[p] {
		return false
	}
	visited[p] = true
	defer delete(visited, p)

	prev := p.dirty.Load()
	if DirtyState(prev) == StateDirty {
		return true
	}
	if p.computeNeedsBuild(visited) {
		p.dirty.Store(int32(StateDirty))
		return true
	}

	// an invalidation racing with the computation wins
	if !p.dirty.CompareAndSwap(prev, int32(StateClean)) {
		return p.DirtyState() == StateDirty
	}
	return false
}

func (p *Project) computeNeedsBuild(visited map[*Project]bool) bool {
	last := p.LastBuildTime()
	if last.IsZero() {
		return true
	}

	for _, f := range p.Files() {
		if f.BuildAction == models.BuildActionExclude {
			continue
		}
		info, err := p.fs.Stat(f.Path)
		if err == nil && info.ModTime().After(last) {
			return true
		}
	}

	for _, name := range p.ProjectReferences() {
		rp := p.resolve(name)
		if rp != nil && rp != p && rp.needsBuilding(visited) {
			return true
		}
	}

	return false
}

// LastBuildTime returns the modification time of the output file, or the
// zero time when there is no output.
func (p *Project) LastBuildTime() time.Time {
	out := p.OutputFile()
	if out == "" {
		return time.Time{}
	}
	info, err := p.fs.Stat(out)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
