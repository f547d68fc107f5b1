// Package event provides the typed observer hub the engine publishes its
// lifecycle notifications through. Hubs are explicit instances: components
// that should share notifications share a hub value, nothing is global.
package event

import (
	"time"
)

// Type identifies an event family.
type Type int

const (
	TypeSignalReady Type = iota
	TypeFrameReady
	TypeAnalysisComplete
	TypeDegradedToCPU
)

// String returns the canonical event name.
func (t Type) String() string {
	switch t {
	case TypeSignalReady:
		return "signal-ready"
	case TypeFrameReady:
		return "frame-ready"
	case TypeAnalysisComplete:
		return "analysis-complete"
	case TypeDegradedToCPU:
		return "degraded-to-cpu"
	default:
		return "unknown"
	}
}

// Event is implemented by all published payloads.
type Event interface {
	Type() Type
}

// SignalReady announces a completed batch generation.
type SignalReady struct {
	SignalID   string
	Name       string
	Samples    int
	SampleRate float64
}

func (SignalReady) Type() Type { return TypeSignalReady }

// FrameReady announces a frame written to a ring buffer.
type FrameReady struct {
	Seq      uint64
	Start    time.Duration
	FrameLen int
}

func (FrameReady) Type() Type { return TypeFrameReady }

// AnalysisComplete announces a finished analysis session.
type AnalysisComplete struct {
	SessionID     string
	SignalID      string
	FundamentalHz float64
	THDPercent    float64
}

func (AnalysisComplete) Type() Type { return TypeAnalysisComplete }

// DegradedToCPU announces the one-time fallback from the accelerated
// compute engine to the portable CPU engine.
type DegradedToCPU struct {
	From   string
	Reason string
}

func (DegradedToCPU) Type() Type { return TypeDegradedToCPU }
