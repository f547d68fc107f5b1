package law

import (
	"fmt"
	"math"
	"sort"
)

// Parameter names accepted by the built-in kinds.
const (
	ParamFrequency    = "frequency"
	ParamAmplitude    = "amplitude"
	ParamPhase        = "phase"
	ParamOffset       = "offset"
	ParamDuty         = "duty"
	ParamEndFrequency = "end_frequency"
	ParamSweepTime    = "sweep_time"
	ParamSeed         = "seed"
	ParamHarmonics    = "harmonics"
)

// Params maps parameter names to values.
type Params map[string]float64

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParamSpec describes one accepted parameter of a law kind.
type ParamSpec struct {
	Name     string
	Required bool
	Default  float64
	Min      float64
	Max      float64
	Integer  bool
}

var commonSpecs = []ParamSpec{
	{Name: ParamAmplitude, Default: 1, Min: 0, Max: math.Inf(1)},
	{Name: ParamPhase, Min: math.Inf(-1), Max: math.Inf(1)},
	{Name: ParamOffset, Min: math.Inf(-1), Max: math.Inf(1)},
}

func freqSpec() ParamSpec {
	return ParamSpec{Name: ParamFrequency, Required: true, Default: 1, Min: math.SmallestNonzeroFloat64, Max: math.Inf(1)}
}

var specsByKind = map[Kind][]ParamSpec{
	KindSine:     append([]ParamSpec{freqSpec()}, commonSpecs...),
	KindCosine:   append([]ParamSpec{freqSpec()}, commonSpecs...),
	KindSquare:   append([]ParamSpec{freqSpec()}, commonSpecs...),
	KindTriangle: append([]ParamSpec{freqSpec()}, commonSpecs...),
	KindSawtooth: append([]ParamSpec{freqSpec()}, commonSpecs...),
	KindPulse: append([]ParamSpec{
		freqSpec(),
		{Name: ParamDuty, Default: 0.5, Min: 0, Max: 1},
	}, commonSpecs...),
	KindChirp: append([]ParamSpec{
		freqSpec(),
		{Name: ParamEndFrequency, Required: true, Min: math.SmallestNonzeroFloat64, Max: math.Inf(1)},
		{Name: ParamSweepTime, Min: 0, Max: math.Inf(1)},
	}, commonSpecs...),
	KindNoise: append([]ParamSpec{
		{Name: ParamSeed, Default: 1, Min: math.Inf(-1), Max: math.Inf(1), Integer: true},
	}, commonSpecs...),
	KindHarmonic: append([]ParamSpec{
		freqSpec(),
		{Name: ParamHarmonics, Default: 4, Min: 1, Max: 1024, Integer: true},
	}, commonSpecs...),
}

// Describe returns the parameter table for a kind, sorted by name.
// Custom laws accept any finite parameters, so their table is empty.
func Describe(kind Kind) ([]ParamSpec, error) {
	if kind == KindCustom {
		return nil, nil
	}

	specs, ok := specsByKind[kind]
	if !ok {
		return nil, &UnsupportedKindError{Kind: kind}
	}

	out := append([]ParamSpec(nil), specs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// resolveParams validates params against the kind table, fills defaults, and
// returns the complete parameter set the evaluator runs on.
func resolveParams(kind Kind, params Params) (Params, error) {
	for name, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParameterError{Name: name, Value: v, Reason: "must be finite"}
		}
	}

	if kind == KindCustom {
		return params.clone(), nil
	}

	specs := specsByKind[kind]
	known := make(map[string]ParamSpec, len(specs))
	for _, s := range specs {
		known[s.Name] = s
	}

	for name := range params {
		if _, ok := known[name]; !ok {
			return nil, &ParameterError{Name: name, Value: params[name], Reason: "unknown parameter for kind " + kind.String()}
		}
	}

	out := make(Params, len(specs))
	for _, s := range specs {
		v, present := params[s.Name]
		if !present {
			if s.Required {
				return nil, &ParameterError{Name: s.Name, Reason: "required"}
			}
			v = s.Default
		}

		if v < s.Min || v > s.Max {
			return nil, &ParameterError{Name: s.Name, Value: v, Reason: rangeReason(s)}
		}

		if s.Integer && v != math.Trunc(v) {
			return nil, &ParameterError{Name: s.Name, Value: v, Reason: "must be an integer"}
		}

		out[s.Name] = v
	}

	return out, nil
}

func rangeReason(s ParamSpec) string {
	switch {
	case s.Min == math.SmallestNonzeroFloat64 && math.IsInf(s.Max, 1):
		return "must be > 0"
	case math.IsInf(s.Max, 1):
		return fmt.Sprintf("must be >= %g", s.Min)
	default:
		return fmt.Sprintf("must be in [%g, %g]", s.Min, s.Max)
	}
}
