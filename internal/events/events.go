// Package events is the change notification bus between projects, the file
// watcher and the build orchestrator.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/models"
)

// Kind identifies an event
type Kind string

const (
	FileAdded           Kind = "file-added"
	FileRemoved         Kind = "file-removed"
	FileRenamed         Kind = "file-renamed"
	FileChanged         Kind = "file-changed"
	FilePropertyChanged Kind = "file-property-changed"
	ReferenceAdded      Kind = "reference-added"
	ReferenceRemoved    Kind = "reference-removed"
	ProjectModified     Kind = "project-modified"
	BuildStarted        Kind = "build-started"
	BuildFinished       Kind = "build-finished"
	BuildFailed         Kind = "build-failed"
)

// Event is a single notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind
	Project string

	File    *models.ProjectFile
	OldPath string

	Reference *models.ProjectReference

	Result *models.BuildResult
	Err    error
}

// Handler reacts to an event. Returning an error stops a synchronous Publish.
type Handler func(Event) error

type subscriber struct {
	id      uint64
	kind    Kind
	handler Handler
}

// Bus dispatches events to subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscription is returned by Subscribe and removes the handler again.
type Subscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

// Subscribe registers handler for events of the given kind.
func (b *Bus) Subscribe(kind Kind, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, kind: kind, handler: handler})
	return &Subscription{bus: b, id: b.nextID}
}

// SubscribeAll registers handler for every kind in kinds and returns one
// subscription per kind.
func (b *Bus) SubscribeAll(handler Handler, kinds ...Kind) []*Subscription {
	subs := make([]*Subscription, 0, len(kinds))
	for _, kind := range kinds {
		subs = append(subs, b.Subscribe(kind, handler))
	}
	return subs
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// handlers snapshots the subscribers of kind so handlers may (un)subscribe
// while being dispatched.
func (b *Bus) handlers(kind Kind) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var hs []Handler
	for _, s := range b.subs {
		if s.kind == kind {
			hs = append(hs, s.handler)
		}
	}
	return hs
}

// Publish dispatches e synchronously. The first handler error stops dispatch
// and is returned. A nil bus drops the event.
func (b *Bus) Publish(e Event) error {
	if b == nil {
		return nil
	}
	for _, h := range b.handlers(e.Kind) {
		if err := h(e); err != nil {
			return fmt.Errorf("%s handler failed: %w", e.Kind, err)
		}
	}
	return nil
}

// PublishIsolated dispatches e to every handler, recovering panics. Errors
// are logged through the context logger and never returned.
func (b *Bus) PublishIsolated(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)
	for _, h := range b.handlers(e.Kind) {
		if err := safeCall(h, e); err != nil {
			logger.Error("event handler failed",
				"kind", string(e.Kind),
				"project", e.Project,
				"error", err)
		}
	}
}

func safeCall(h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(e)
}
