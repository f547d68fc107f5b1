package analyze

import (
	"github.com/cwbudde/signalyzer/window"
)

// Peak is one detected spectral component.
type Peak struct {
	Frequency float64
	Amplitude float64
}

// Result holds the outcome of one spectral analysis. The four spectra share
// one length, transform size / 2 + 1, covering 0 through Nyquist inclusive.
// When no fundamental cleared the detection threshold, Fundamental is the
// zero Peak, Harmonics is empty, and THDPercent is 0; the spectra are still
// valid.
type Result struct {
	Frequencies []float64
	Magnitudes  []float64
	Phases      []float64
	PSD         []float64

	// Fundamental is the strongest component inside the configured search
	// range, parabolically refined between bins.
	Fundamental Peak

	// Harmonics lists the detected components sorted ascending by frequency,
	// the fundamental first.
	Harmonics []Peak

	// THDPercent is 100 * sqrt(sum of squared harmonic amplitudes) divided by
	// the fundamental amplitude.
	THDPercent float64

	// Envelope is the instantaneous amplitude of the analyzed samples, one
	// value per input sample.
	Envelope []float64

	Frames     int
	WindowKind window.Kind
	BinWidth   float64
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}

	cp := *r
	cp.Frequencies = append([]float64(nil), r.Frequencies...)
	cp.Magnitudes = append([]float64(nil), r.Magnitudes...)
	cp.Phases = append([]float64(nil), r.Phases...)
	cp.PSD = append([]float64(nil), r.PSD...)
	cp.Harmonics = append([]Peak(nil), r.Harmonics...)
	cp.Envelope = append([]float64(nil), r.Envelope...)

	return &cp
}
