package compute

import (
	"runtime"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// evalShardMin is the series length below which sharding costs more than the
// evaluation itself.
const evalShardMin = 16384

// vectorEngine is the accelerated variant: SIMD block kernels for the
// element-wise paths and sharded evaluation for long series. It registers
// itself as the default accelerator; deployments with dedicated hardware
// register their own engine at a higher priority.
type vectorEngine struct {
	workers int
}

func init() {
	RegisterAccelerator("vector", 10, func() (Engine, error) {
		return newVectorEngine(), nil
	})
}

func newVectorEngine() *vectorEngine {
	return &vectorEngine{workers: runtime.NumCPU()}
}

func (e *vectorEngine) Name() string {
	return "vector"
}

func (e *vectorEngine) EvaluateSeries(dst, times []float64, eval func(float64) float64) error {
	if len(dst) != len(times) {
		return errLengthMismatch
	}
	if eval == nil {
		return errNilEval
	}

	n := len(dst)
	if n < evalShardMin || e.workers < 2 {
		for i, t := range times {
			dst[i] = eval(t)
		}
		return nil
	}

	chunk := (n + e.workers - 1) / e.workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				dst[i] = eval(times[i])
			}
		}(start, end)
	}
	wg.Wait()

	return nil
}

func (e *vectorEngine) WindowedMultiply(dst, frame, coeffs []float64) error {
	if len(dst) != len(frame) || len(frame) != len(coeffs) {
		return errLengthMismatch
	}
	if len(frame) == 0 {
		return nil
	}

	if &dst[0] == &frame[0] {
		vecmath.MulBlockInPlace(dst, coeffs)
		return nil
	}

	vecmath.MulBlock(dst, frame, coeffs)

	return nil
}

func (e *vectorEngine) TransformForward(dst []complex128, src []float64) error {
	return plans.forwardReal(dst, src)
}

func (e *vectorEngine) TransformInverse(dst, src []complex128) error {
	return plans.inverse(dst, src)
}
