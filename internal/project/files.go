package project

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/models"
)

// FileCollection is the ordered set of files owned by a project. It is not
// safe for concurrent use; Project guards it.
type FileCollection struct {
	files []*models.ProjectFile
}

func newFileCollection() *FileCollection {
	return &FileCollection{}
}

// Get returns the file with the given absolute path, or nil
func (c *FileCollection) Get(path string) *models.ProjectFile {
	for _, f := range c.files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Len returns the number of files
func (c *FileCollection) Len() int {
	return len(c.files)
}

func (c *FileCollection) add(f *models.ProjectFile) {
	c.files = append(c.files, f)
}

func (c *FileCollection) remove(path string) *models.ProjectFile {
	for i, f := range c.files {
		if f.Path == path {
			c.files = append(c.files[:i:i], c.files[i+1:]...)
			return f
		}
	}
	return nil
}

func (c *FileCollection) snapshot() []*models.ProjectFile {
	out := make([]*models.ProjectFile, len(c.files))
	copy(out, c.files)
	return out
}

// absPath resolves path against the project base directory.
func (p *Project) absPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.BaseDir(), path)
}

func (p *Project) relPath(abs string) string {
	rel, err := filepath.Rel(p.BaseDir(), abs)
	if err != nil {
		return abs
	}
	return rel
}

func (p *Project) normalizeFile(f *models.ProjectFile) *models.ProjectFile {
	path := p.absPath(f.Path)
	action := f.BuildAction
	if action == "" {
		action = models.BuildActionCompile
	}
	return &models.ProjectFile{
		Path:         path,
		RelativePath: p.relPath(path),
		BuildAction:  action,
	}
}

// Files returns a snapshot of the project files in insertion order.
func (p *Project) Files() []*models.ProjectFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files.snapshot()
}

// GetProjectFile returns the file for path, or nil. Relative paths are
// resolved against the base directory.
func (p *Project) GetProjectFile(path string) *models.ProjectFile {
	abs := p.absPath(path)

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files.Get(abs)
}

// IsFileInProject reports whether path belongs to the project.
func (p *Project) IsFileInProject(path string) bool {
	return p.GetProjectFile(path) != nil
}

// AddFile adds a file with the given build action. Adding a path that is
// already in the project returns the existing entry unchanged.
func (p *Project) AddFile(path string, action models.BuildAction) (*models.ProjectFile, error) {
	f := p.normalizeFile(&models.ProjectFile{Path: path, BuildAction: action})

	p.mu.Lock()
	if existing := p.files.Get(f.Path); existing != nil {
		p.mu.Unlock()
		return existing, nil
	}
	p.files.add(f)
	p.mu.Unlock()

	p.Invalidate()
	if err := p.notify(events.Event{Kind: events.FileAdded, File: f}); err != nil {
		return f, fmt.Errorf("failed to notify file added: %w", err)
	}
	return f, nil
}

// RemoveFile removes a file from the project. The file is not deleted.
func (p *Project) RemoveFile(path string) error {
	abs := p.absPath(path)

	p.mu.Lock()
	f := p.files.remove(abs)
	p.mu.Unlock()

	if f == nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	p.Invalidate()
	if err := p.notify(events.Event{Kind: events.FileRemoved, File: f}); err != nil {
		return fmt.Errorf("failed to notify file removed: %w", err)
	}
	return nil
}

// RenameFile changes the path of a project file. The file on disk is not moved.
func (p *Project) RenameFile(oldPath, newPath string) error {
	oldAbs := p.absPath(oldPath)
	newAbs := p.absPath(newPath)

	p.mu.Lock()
	f := p.files.Get(oldAbs)
	if f == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFileNotFound, oldPath)
	}
	if other := p.files.Get(newAbs); other != nil && other != f {
		p.mu.Unlock()
		return fmt.Errorf("cannot rename %s: %s is already in the project", oldPath, newPath)
	}
	f.Path = newAbs
	f.RelativePath = p.relPath(newAbs)
	p.mu.Unlock()

	p.Invalidate()
	if err := p.notify(events.Event{Kind: events.FileRenamed, File: f, OldPath: oldAbs}); err != nil {
		return fmt.Errorf("failed to notify file renamed: %w", err)
	}
	return nil
}

// SetBuildAction changes how the build treats a file. Only the file
// properties change, so the dirty state is left alone.
func (p *Project) SetBuildAction(path string, action models.BuildAction) error {
	abs := p.absPath(path)

	p.mu.Lock()
	f := p.files.Get(abs)
	if f == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	f.BuildAction = action
	p.mu.Unlock()

	if err := p.notify(events.Event{Kind: events.FilePropertyChanged, File: f}); err != nil {
		return fmt.Errorf("failed to notify file property changed: %w", err)
	}
	return nil
}

// HandleFileChanged is called by file watchers. If path belongs to the
// project, the project is marked dirty and FileChanged is published with
// handler failures isolated from the watcher.
func (p *Project) HandleFileChanged(ctx context.Context, path string) bool {
	f := p.GetProjectFile(path)
	if f == nil {
		return false
	}

	p.Invalidate()
	p.bus.PublishIsolated(ctx, events.Event{Kind: events.FileChanged, Project: p.Name(), File: f})
	return true
}
