// Package registry holds the published block set for one build or dev-server
// session and generates the virtual registry module from it.
//
// A BlockRegistry is the session-scoped container for scan results: the
// scanner replaces its contents wholesale after every scan, and interested
// parties (the dev server, the watch loop) subscribe to change events.
// Nothing in this package is a process-wide singleton, so concurrent builds
// in a test suite cannot interfere.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/slabs-dev/slabs/internal/types"
)

// EventType represents the kind of registry change.
type EventType int

const (
	EventAdded EventType = iota
	EventUpdated
	EventRemoved
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// BlockEvent notifies watchers of a change in the published block set.
type BlockEvent struct {
	Type EventType
	// Block is the definition involved; for removals it is the last
	// published definition
	Block *types.BlockDefinition
	// Timestamp records when the event was published
	Timestamp time.Time
}

// BlockRegistry manages the currently published block definitions.
type BlockRegistry struct {
	mu       sync.RWMutex
	blocks   map[string]*types.BlockDefinition
	watchers []chan BlockEvent
}

// NewBlockRegistry creates an empty registry.
func NewBlockRegistry() *BlockRegistry {
	return &BlockRegistry{
		blocks: make(map[string]*types.BlockDefinition),
	}
}

// Replace swaps the published set for defs, emitting added/updated/removed
// events relative to the previous set. Rescans rebuild the whole set, so
// this is the only mutation path.
func (r *BlockRegistry) Replace(defs []*types.BlockDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*types.BlockDefinition, len(defs))
	now := time.Now()

	for _, def := range defs {
		next[def.Name] = def
		eventType := EventAdded
		if _, exists := r.blocks[def.Name]; exists {
			eventType = EventUpdated
		}
		r.notify(BlockEvent{Type: eventType, Block: def, Timestamp: now})
	}

	for name, old := range r.blocks {
		if _, kept := next[name]; !kept {
			r.notify(BlockEvent{Type: EventRemoved, Block: old, Timestamp: now})
		}
	}

	r.blocks = next
}

// Get retrieves a published block by name.
func (r *BlockRegistry) Get(name string) (*types.BlockDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.blocks[name]

	return def, ok
}

// All returns the published blocks sorted by name.
func (r *BlockRegistry) All() []*types.BlockDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*types.BlockDefinition, 0, len(r.blocks))
	for _, def := range r.blocks {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	return defs
}

// Count returns the number of published blocks.
func (r *BlockRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.blocks)
}

// Watch returns a channel receiving registry events.
func (r *BlockRegistry) Watch() <-chan BlockEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan BlockEvent, 100)
	r.watchers = append(r.watchers, ch)

	return ch
}

// Unwatch removes and closes a watcher channel.
func (r *BlockRegistry) Unwatch(ch <-chan BlockEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify sends an event to all watchers without blocking; callers hold r.mu.
func (r *BlockRegistry) notify(event BlockEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Watcher is not keeping up; drop rather than stall Replace.
		}
	}
}
