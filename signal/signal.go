// Package signal holds the generated-signal data model, the batch generator,
// and the real-time streaming producer. Generation is deterministic: the same
// law, sample rate, and duration always yield the same sample slice, whichever
// compute engine performs the evaluation.
package signal

import (
	"time"

	"github.com/cwbudde/signalyzer/law"
)

// SignalData is one generated signal. Timestamps are implicit and evenly
// spaced: sample i lies at i/SampleRate seconds. The sample slice belongs to
// the holder; the engine never mutates a SignalData it has returned.
type SignalData struct {
	ID         string
	Name       string
	Law        law.Law
	SampleRate float64
	Duration   float64
	Samples    []float64
	CreatedAt  time.Time
}

// Len returns the number of samples.
func (s *SignalData) Len() int {
	return len(s.Samples)
}

// Time returns the timestamp of sample i in seconds.
func (s *SignalData) Time(i int) float64 {
	return float64(i) / s.SampleRate
}

// Times materializes the timestamps of all samples.
func (s *SignalData) Times() []float64 {
	out := make([]float64, len(s.Samples))
	for i := range out {
		out[i] = float64(i) / s.SampleRate
	}

	return out
}

// Clone returns a deep copy of the signal.
func (s *SignalData) Clone() *SignalData {
	if s == nil {
		return nil
	}

	out := *s
	out.Samples = append([]float64(nil), s.Samples...)

	return &out
}
