package graph

import (
	"github.com/driftforge/frame/internal/bitm"
)

// Handle identifies a live ResourceInstance owned by a Registry.
// The zero Handle is never valid. Handles are unique for the lifetime
// of the Registry that issued them and are never reused, matching the
// "no removal during normal operation" contract of the Registry.
type Handle uint64

// slotNBit is the granularity of the Registry's slot allocator.
const slotNBit = 32

// Registry owns every live ResourceInstance, indexed by a stable
// Handle. It is built up during graph construction (add_resource) and
// torn down as a whole at shutdown; individual entries are never
// removed.
//
// Registry is not safe for concurrent use: per the engine's
// concurrency model, all graph mutation happens on the render thread
// before the first Execute.
type Registry struct {
	slots   bitm.Bitm[uint32]
	entries []ResourceInstance
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Add inserts inst and returns the Handle that identifies it from now
// on. It panics if inst is nil.
func (r *Registry) Add(inst ResourceInstance) Handle {
	if inst == nil {
		panic("graph: Registry.Add: nil instance")
	}
	i, ok := r.slots.Search()
	if !ok {
		i = r.slots.Grow(1)
		var z [slotNBit]ResourceInstance
		r.entries = append(r.entries, z[:]...)
	}
	r.slots.Set(i)
	r.entries[i] = inst
	return Handle(i + 1)
}

// Get returns the instance identified by h. It panics if h was never
// returned by Add on this Registry.
func (r *Registry) Get(h Handle) ResourceInstance {
	i := int(h) - 1
	if h == 0 || i >= len(r.entries) || !r.slots.IsSet(i) {
		panic("graph: Registry.Get: invalid handle")
	}
	return r.entries[i]
}

// Len returns the number of instances added to the Registry.
func (r *Registry) Len() int { return len(r.entries) - r.slots.Rem() }

// Destroy destroys every instance held by the Registry and clears it.
// It is invoked once, at engine shutdown.
func (r *Registry) Destroy() {
	for i, inst := range r.entries {
		if inst != nil && r.slots.IsSet(i) {
			inst.destroy()
		}
	}
	*r = Registry{}
}
