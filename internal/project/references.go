package project

import (
	"fmt"

	"github.com/jakoblorz/go-combine/internal/events"
	"github.com/jakoblorz/go-combine/internal/models"
)

// ReferenceCollection is the ordered set of outbound references of a
// project, unique by target. Project guards it.
type ReferenceCollection struct {
	refs []*models.ProjectReference
}

func newReferenceCollection() *ReferenceCollection {
	return &ReferenceCollection{}
}

// Get returns the reference with the given target, or nil
func (c *ReferenceCollection) Get(target string) *models.ProjectReference {
	for _, r := range c.refs {
		if r.Reference == target {
			return r
		}
	}
	return nil
}

// Len returns the number of references
func (c *ReferenceCollection) Len() int {
	return len(c.refs)
}

func (c *ReferenceCollection) add(r *models.ProjectReference) {
	c.refs = append(c.refs, r)
}

func (c *ReferenceCollection) remove(target string) *models.ProjectReference {
	for i, r := range c.refs {
		if r.Reference == target {
			c.refs = append(c.refs[:i:i], c.refs[i+1:]...)
			return r
		}
	}
	return nil
}

func (c *ReferenceCollection) snapshot() []*models.ProjectReference {
	out := make([]*models.ProjectReference, len(c.refs))
	copy(out, c.refs)
	return out
}

// References returns a snapshot of the outbound references.
func (p *Project) References() []*models.ProjectReference {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.references.snapshot()
}

// GetReference returns the reference to target, or nil
func (p *Project) GetReference(target string) *models.ProjectReference {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.references.Get(target)
}

// ProjectReferences returns the names of Project-kind references.
func (p *Project) ProjectReferences() []string {
	var names []string
	for _, r := range p.References() {
		if r.Type == models.ReferenceProject {
			names = append(names, r.Reference)
		}
	}
	return names
}

// AddReference adds a reference. If a reference to target already exists it
// is returned unchanged.
func (p *Project) AddReference(refType models.ReferenceType, target string) (*models.ProjectReference, error) {
	p.mu.Lock()
	if existing := p.references.Get(target); existing != nil {
		p.mu.Unlock()
		return existing, nil
	}
	ref := models.NewProjectReference(refType, target)
	p.references.add(ref)
	p.mu.Unlock()

	p.Invalidate()
	if err := p.notify(events.Event{Kind: events.ReferenceAdded, Reference: ref}); err != nil {
		return ref, fmt.Errorf("failed to notify reference added: %w", err)
	}
	return ref, nil
}

// RemoveReference removes the reference to target.
func (p *Project) RemoveReference(target string) error {
	p.mu.Lock()
	ref := p.references.remove(target)
	p.mu.Unlock()

	if ref == nil {
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, target)
	}

	p.Invalidate()
	if err := p.notify(events.Event{Kind: events.ReferenceRemoved, Reference: ref}); err != nil {
		return fmt.Errorf("failed to notify reference removed: %w", err)
	}
	return nil
}

// RenameReferences points Project-kind references to oldName at newName.
// Position and local-copy flag are kept.
func (p *Project) RenameReferences(oldName, newName string) error {
	type renamed struct{ old, new *models.ProjectReference }
	var changes []renamed

	p.mu.Lock()
	for i, r := range p.references.refs {
		if r.Type != models.ReferenceProject || r.Reference != oldName {
			continue
		}
		next := &models.ProjectReference{Type: r.Type, Reference: newName, LocalCopy: r.LocalCopy}
		p.references.refs[i] = next
		changes = append(changes, renamed{old: r, new: next})
	}
	p.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}

	p.Invalidate()
	for _, c := range changes {
		if err := p.notify(events.Event{Kind: events.ReferenceRemoved, Reference: c.old}); err != nil {
			return fmt.Errorf("failed to notify reference removed: %w", err)
		}
		if err := p.notify(events.Event{Kind: events.ReferenceAdded, Reference: c.new}); err != nil {
			return fmt.Errorf("failed to notify reference added: %w", err)
		}
	}
	return nil
}
