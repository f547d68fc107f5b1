package compute

import (
	"fmt"
	"sync"

	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/logging"
)

// SelectOption configures a selection call.
type SelectOption func(*selectConfig)

type selectConfig struct {
	hub *event.Hub
	log logging.Logger
}

// WithHub attaches the hub that receives the DegradedToCPU event. The most
// recently attached hub also receives runtime-fault degradations.
func WithHub(h *event.Hub) SelectOption {
	return func(c *selectConfig) {
		c.hub = h
	}
}

// WithLogger sets the logger for selection and degradation reporting.
func WithLogger(l logging.Logger) SelectOption {
	return func(c *selectConfig) {
		if l != nil {
			c.log = l
		}
	}
}

var selection struct {
	mu     sync.Mutex
	probed bool
	name   string
	err    error
	guard  *guarded
}

var reporting struct {
	mu  sync.Mutex
	hub *event.Hub
	log logging.Logger
}

var degraded struct {
	mu   sync.Mutex
	done bool
}

// Select returns the engine for the given strategy. CPU never probes; auto
// and gpu probe the registered accelerator at most once per process and
// degrade to the CPU engine on failure. Selection never fails for a known
// strategy.
func Select(strategy Strategy, opts ...SelectOption) (Engine, error) {
	cfg := selectConfig{log: logging.L()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	reporting.mu.Lock()
	if cfg.hub != nil {
		reporting.hub = cfg.hub
	}
	reporting.log = cfg.log
	reporting.mu.Unlock()

	switch strategy {
	case StrategyCPU:
		return cpuInstance, nil
	case StrategyAuto, StrategyGPU:
	default:
		return nil, &UnknownStrategyError{Name: fmt.Sprintf("%d", int(strategy))}
	}

	guard, name, probeErr := probeAccelerator()
	if guard != nil {
		cfg.log.Debug("accelerator selected", logging.Fields{"engine": name})
		return guard, nil
	}

	switch {
	case probeErr != nil:
		markDegraded(name, probeErr.Error())
	case strategy == StrategyGPU:
		markDegraded("gpu", "no accelerator registered")
	}

	return cpuInstance, nil
}

// Default returns the engine for StrategyAuto. It never fails.
func Default() Engine {
	e, _ := Select(StrategyAuto)
	return e
}

// probeAccelerator resolves the accelerator once per process. Later calls
// return the cached outcome until ResetSelection.
func probeAccelerator() (*guarded, string, error) {
	selection.mu.Lock()
	defer selection.mu.Unlock()

	if !selection.probed {
		selection.probed = true

		entry := Accelerators.Best()
		if entry != nil {
			selection.name = entry.Name

			eng, err := runProbe(entry)
			if err != nil {
				selection.err = err
			} else {
				selection.guard = newGuarded(eng, markDegraded)
			}
		}
	}

	return selection.guard, selection.name, selection.err
}

func runProbe(entry *AcceleratorEntry) (eng Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			eng = nil
			err = fmt.Errorf("compute: accelerator %q probe panicked: %v", entry.Name, r)
		}
	}()

	eng, err = entry.Probe()
	if err != nil {
		return nil, fmt.Errorf("compute: accelerator %q probe failed: %w", entry.Name, err)
	}
	if eng == nil {
		return nil, fmt.Errorf("compute: accelerator %q probe returned no engine", entry.Name)
	}

	return eng, nil
}

// markDegraded records the process-wide fallback to the CPU engine and
// publishes DegradedToCPU through the attached hub. Only the first
// degradation is reported.
func markDegraded(from, reason string) {
	degraded.mu.Lock()
	already := degraded.done
	degraded.done = true
	degraded.mu.Unlock()

	if already {
		return
	}

	reporting.mu.Lock()
	hub := reporting.hub
	log := reporting.log
	reporting.mu.Unlock()

	if log == nil {
		log = logging.L()
	}
	log.Warn("compute degraded to cpu", logging.Fields{"from": from, "reason": reason})

	if hub != nil {
		_ = hub.Publish(event.DegradedToCPU{From: from, Reason: reason})
	}
}

// ResetSelection clears the cached probe outcome and the degradation latch.
// Intended for tests; production code probes once per process.
func ResetSelection() {
	selection.mu.Lock()
	selection.probed = false
	selection.name = ""
	selection.err = nil
	selection.guard = nil
	selection.mu.Unlock()

	degraded.mu.Lock()
	degraded.done = false
	degraded.mu.Unlock()

	reporting.mu.Lock()
	reporting.hub = nil
	reporting.log = nil
	reporting.mu.Unlock()
}
