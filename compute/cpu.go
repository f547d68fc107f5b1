package compute

type cpuEngine struct{}

var cpuInstance = &cpuEngine{}

// CPU returns the portable engine. It is always available.
func CPU() Engine {
	return cpuInstance
}

func (e *cpuEngine) Name() string {
	return "cpu"
}

func (e *cpuEngine) EvaluateSeries(dst, times []float64, eval func(float64) float64) error {
	if len(dst) != len(times) {
		return errLengthMismatch
	}
	if eval == nil {
		return errNilEval
	}

	for i, t := range times {
		dst[i] = eval(t)
	}

	return nil
}

func (e *cpuEngine) WindowedMultiply(dst, frame, coeffs []float64) error {
	if len(dst) != len(frame) || len(frame) != len(coeffs) {
		return errLengthMismatch
	}

	for i := range frame {
		dst[i] = frame[i] * coeffs[i]
	}

	return nil
}

func (e *cpuEngine) TransformForward(dst []complex128, src []float64) error {
	return plans.forwardReal(dst, src)
}

func (e *cpuEngine) TransformInverse(dst, src []complex128) error {
	return plans.inverse(dst, src)
}
