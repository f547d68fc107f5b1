package law

import (
	"sync"
)

// CustomFunc evaluates a custom law at time t with the law's parameters.
// Implementations must be pure: no I/O, no shared state, same inputs same
// output. The engine relies on this for determinism and safe sharding.
type CustomFunc func(t float64, p Params) float64

var (
	customMu  sync.RWMutex
	customFns = map[string]CustomFunc{}
)

// RegisterCustom binds a named evaluator for use with NewCustom.
// Registering an empty name or nil fn panics; re-registering a name
// replaces the previous evaluator.
func RegisterCustom(name string, fn CustomFunc) {
	if name == "" {
		panic("law: custom name must not be empty")
	}
	if fn == nil {
		panic("law: custom fn must not be nil")
	}

	customMu.Lock()
	defer customMu.Unlock()
	customFns[name] = fn
}

// UnregisterCustom removes a named evaluator. Laws already constructed keep
// their function.
func UnregisterCustom(name string) {
	customMu.Lock()
	defer customMu.Unlock()
	delete(customFns, name)
}

func lookupCustom(name string) (CustomFunc, bool) {
	customMu.RLock()
	defer customMu.RUnlock()
	fn, ok := customFns[name]
	return fn, ok
}
