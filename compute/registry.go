package compute

import (
	"sync"
)

// Probe constructs an accelerator engine, verifying the backing hardware or
// runtime is usable. Probes run at most once per process; a returned error
// (or panic) degrades selection to the CPU engine.
type Probe func() (Engine, error)

// AcceleratorEntry is a registered accelerator variant.
type AcceleratorEntry struct {
	// Name labels the variant in logs and DegradedToCPU events.
	Name string

	// Priority orders candidates; the highest-priority entry is probed.
	// The built-in vector engine registers at 10, leaving room above for
	// hardware-backed engines.
	Priority int

	// Probe builds the engine.
	Probe Probe
}

// AcceleratorRegistry manages accelerator registration and lookup.
type AcceleratorRegistry struct {
	mu      sync.RWMutex
	entries []AcceleratorEntry
}

// Accelerators is the process-wide registry used by Select.
var Accelerators = &AcceleratorRegistry{}

// Register adds an accelerator variant. Typically called from init()
// functions; all registrations should complete before the first Select.
func (r *AcceleratorRegistry) Register(entry AcceleratorEntry) {
	if entry.Probe == nil {
		panic("compute: accelerator probe must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Best returns the highest-priority registered entry, or nil when no
// accelerator is registered. Registration order breaks priority ties.
func (r *AcceleratorRegistry) Best() *AcceleratorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *AcceleratorEntry
	for i := range r.entries {
		e := &r.entries[i]
		if best == nil || e.Priority > best.Priority {
			best = e
		}
	}

	if best == nil {
		return nil
	}

	out := *best
	return &out
}

// List returns a copy of all registered entries.
func (r *AcceleratorRegistry) List() []AcceleratorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]AcceleratorEntry(nil), r.entries...)
}

// Reset clears all registered entries. Intended for tests.
func (r *AcceleratorRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// RegisterAccelerator adds an accelerator to the process-wide registry.
func RegisterAccelerator(name string, priority int, probe Probe) {
	Accelerators.Register(AcceleratorEntry{Name: name, Priority: priority, Probe: probe})
}
