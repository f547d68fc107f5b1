// Package window provides the analysis window functions used by the
// spectral pipeline, with the spectral metadata (coherent gain, equivalent
// noise bandwidth, main-lobe width) the analyzer needs for amplitude
// correction and harmonic capture.
package window

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Kind identifies a window function.
type Kind int

const (
	KindRectangular Kind = iota
	KindHann
	KindHamming
	KindBlackman
)

var kindNames = map[Kind]string{
	KindRectangular: "rectangular",
	KindHann:        "hann",
	KindHamming:     "hamming",
	KindBlackman:    "blackman",
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind resolves a kind from its canonical name.
func ParseKind(name string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == needle {
			return k, nil
		}
	}
	return 0, &UnknownKindError{Name: name}
}

// Kinds returns all supported kinds in declaration order.
func Kinds() []Kind {
	return []Kind{KindRectangular, KindHann, KindHamming, KindBlackman}
}

// Metadata holds spectral properties of a window kind.
type Metadata struct {
	Name string

	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64

	// CoherentGain is the mean coefficient value; spectra are divided by it
	// to recover sinusoid amplitudes.
	CoherentGain float64

	// HighestSidelobeDB is the level of the strongest sidelobe relative to
	// the main lobe.
	HighestSidelobeDB float64

	// FirstMinimumBins is the half-width of the main lobe in bins, used as
	// the capture width when integrating a spectral peak.
	FirstMinimumBins int
}

var metadataByKind = map[Kind]Metadata{
	KindRectangular: {Name: "Rectangular", ENBW: 1.0, CoherentGain: 1.0, HighestSidelobeDB: -13.3, FirstMinimumBins: 1},
	KindHann:        {Name: "Hann", ENBW: 1.5, CoherentGain: 0.5, HighestSidelobeDB: -31.5, FirstMinimumBins: 2},
	KindHamming:     {Name: "Hamming", ENBW: 1.3628, CoherentGain: 0.54, HighestSidelobeDB: -42.7, FirstMinimumBins: 2},
	KindBlackman:    {Name: "Blackman", ENBW: 1.7268, CoherentGain: 0.42, HighestSidelobeDB: -58.1, FirstMinimumBins: 3},
}

// Info returns static metadata for a window kind.
func Info(k Kind) Metadata {
	if m, ok := metadataByKind[k]; ok {
		return m
	}
	return Metadata{}
}

// Cosine-term coefficients: w(x) = sum c[k]*cos(k*2*pi*x) for x in [0, 1].
var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic generates the periodic form (FFT framing) instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(k Kind, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length, cfg.periodic)
		out[i] = evalWindow(k, x)
	}

	return out
}

// Apply multiplies buf in place by the selected window.
func Apply(k Kind, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	coeffs := Generate(k, len(buf), opts...)
	vecmath.MulBlockInPlace(buf, coeffs)
}

// EquivalentNoiseBandwidth returns the ENBW in bins for generated
// coefficients.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	sumSquares := 0.0
	for _, c := range coeffs {
		sum += c
		sumSquares += c * c
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * sumSquares / (sum * sum), nil
}

func evalWindow(k Kind, x float64) float64 {
	switch k {
	case KindRectangular:
		return 1
	case KindHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case KindHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case KindBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	default:
		return 0
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
