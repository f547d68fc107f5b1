// Package law defines parameterized mathematical laws and their evaluation.
// A Law is a pure description: evaluating it at a point in time performs no
// I/O, touches no shared state, and always yields the same value for the same
// inputs. Signal generation and analysis build on top of this contract.
package law

import (
	"math"
	"strings"
)

// Kind identifies a law family.
type Kind int

const (
	KindSine Kind = iota
	KindCosine
	KindSquare
	KindTriangle
	KindSawtooth
	KindPulse
	KindChirp
	KindNoise
	KindHarmonic
	KindCustom
)

var kindNames = map[Kind]string{
	KindSine:     "sine",
	KindCosine:   "cosine",
	KindSquare:   "square",
	KindTriangle: "triangle",
	KindSawtooth: "sawtooth",
	KindPulse:    "pulse",
	KindChirp:    "chirp",
	KindNoise:    "noise",
	KindHarmonic: "harmonic",
	KindCustom:   "custom",
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
	return 0, &UnsupportedKindError{Name: name}
}

// Law is an immutable parameterized law. Construct with New or NewCustom.
type Law struct {
	kind   Kind
	custom string
	params Params
	fn     CustomFunc
}

// New validates params against the kind's parameter table and returns the law.
func New(kind Kind, params Params) (Law, error) {
	if kind == KindCustom {
		return Law{}, &UnsupportedKindError{Kind: kind, Name: "custom laws require NewCustom"}
	}
	if _, ok := kindNames[kind]; !ok {
		return Law{}, &UnsupportedKindError{Kind: kind}
	}

	resolved, err := resolveParams(kind, params)
	if err != nil {
		return Law{}, err
	}

	return Law{kind: kind, params: resolved}, nil
}

// NewCustom returns a law backed by a registered custom evaluator.
// Referencing an unregistered name fails with UnsupportedKindError.
func NewCustom(name string, params Params) (Law, error) {
	fn, ok := lookupCustom(name)
	if !ok {
		return Law{}, &UnsupportedKindError{Kind: KindCustom, Name: name}
	}

	resolved, err := resolveParams(KindCustom, params)
	if err != nil {
		return Law{}, err
	}

	return Law{kind: KindCustom, custom: name, params: resolved, fn: fn}, nil
}

// Kind returns the law family.
func (l Law) Kind() Kind {
	return l.kind
}

// CustomName returns the registered evaluator name for custom laws.
func (l Law) CustomName() string {
	return l.custom
}

// Param returns a parameter value; the second result reports presence.
func (l Law) Param(name string) (float64, bool) {
	v, ok := l.params[name]
	return v, ok
}

// Params returns a copy of the resolved parameter set (defaults filled in).
func (l Law) Params() Params {
	return l.params.clone()
}

// WithParam returns a copy of the law with one parameter replaced. The value
// is validated against the kind's table.
func (l Law) WithParam(name string, value float64) (Law, error) {
	next := l.params.clone()
	next[name] = value

	resolved, err := resolveParams(l.kind, next)
	if err != nil {
		return Law{}, err
	}

	out := l
	out.params = resolved

	return out, nil
}

// Eval evaluates the law at time t (seconds).
func (l Law) Eval(t float64) float64 {
	p := l.params
	offset := p[ParamOffset]
	amp := p[ParamAmplitude]
	freq := p[ParamFrequency]
	phase := p[ParamPhase]

	switch l.kind {
	case KindSine:
		return offset + amp*math.Sin(2*math.Pi*freq*t+phase)
	case KindCosine:
		return offset + amp*math.Cos(2*math.Pi*freq*t+phase)
	case KindSquare:
		if cycleFraction(freq, t, phase) < 0.5 {
			return offset + amp
		}
		return offset - amp
	case KindTriangle:
		return offset + (2*amp/math.Pi)*math.Asin(math.Sin(2*math.Pi*freq*t+phase))
	case KindSawtooth:
		return offset + amp*(2*cycleFraction(freq, t, phase)-1)
	case KindPulse:
		if cycleFraction(freq, t, phase) < p[ParamDuty] {
			return offset + amp
		}
		return offset - amp
	case KindChirp:
		return offset + amp*math.Sin(chirpPhase(freq, p[ParamEndFrequency], p[ParamSweepTime], t)+phase)
	case KindNoise:
		return offset + amp*noiseAt(int64(p[ParamSeed]), t)
	case KindHarmonic:
		sum := 0.0
		n := int(p[ParamHarmonics])
		for i := 1; i <= n; i++ {
			sum += (amp / float64(i)) * math.Sin(2*math.Pi*float64(i)*freq*t+phase)
		}
		return offset + sum
	case KindCustom:
		return l.fn(t, p)
	default:
		return 0
	}
}

// EvalSeries evaluates the law at each time in times, writing into dst.
// dst and times must have equal length. Compute engines may shard this
// across goroutines; results are independent of evaluation order.
func (l Law) EvalSeries(dst, times []float64) {
	n := min(len(dst), len(times))
	for i := 0; i < n; i++ {
		dst[i] = l.Eval(times[i])
	}
}

// cycleFraction returns the position within the current cycle in [0, 1).
func cycleFraction(freq, t, phase float64) float64 {
	x := freq*t + phase/(2*math.Pi)
	return x - math.Floor(x)
}

// chirpPhase integrates a linear frequency sweep from f0 to f1 over sweepTime.
// With no sweep window the chirp degenerates to a fixed tone at f0.
func chirpPhase(f0, f1, sweepTime, t float64) float64 {
	if sweepTime <= 0 || f1 == f0 {
		return 2 * math.Pi * f0 * t
	}
	rate := (f1 - f0) / sweepTime
	return 2 * math.Pi * (f0*t + 0.5*rate*t*t)
}

// noiseAt returns uniform noise in [-1, 1] from a hash of the seed and the
// time value. Each sample depends only on its own inputs, so evaluation
// order and sharding never change the output.
func noiseAt(seed int64, t float64) float64 {
	z := math.Float64bits(t) ^ (uint64(seed) * 0x9e3779b97f4a7c15)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31

	return 2*(float64(z>>11)/(1<<53)) - 1
}
