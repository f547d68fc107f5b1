package compute

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// guarded wraps the selected accelerator with runtime fault protection: a
// failing or panicking accelerator call is retried on the CPU engine, the
// accelerator is retired for the rest of the process, and the degradation is
// reported once.
type guarded struct {
	accel   Engine
	cpu     Engine
	swapped atomic.Bool
	onFault func(from, reason string)
}

func newGuarded(accel Engine, onFault func(from, reason string)) *guarded {
	return &guarded{accel: accel, cpu: cpuInstance, onFault: onFault}
}

func (g *guarded) Name() string {
	if g.swapped.Load() {
		return g.cpu.Name()
	}
	return g.accel.Name()
}

func (g *guarded) fault(err error) {
	if g.swapped.CompareAndSwap(false, true) {
		g.onFault(g.accel.Name(), err.Error())
	}
}

// isCallerError reports argument-contract violations, which are returned to
// the caller as-is instead of retiring the accelerator.
func isCallerError(err error) bool {
	var tse *TransformSizeError
	return errors.Is(err, errLengthMismatch) || errors.Is(err, errNilEval) || errors.As(err, &tse)
}

// call runs fn with panic recovery so a broken accelerator kernel surfaces
// as an error instead of taking the process down.
func (g *guarded) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute: accelerator panic: %v", r)
		}
	}()
	return fn()
}

func (g *guarded) EvaluateSeries(dst, times []float64, eval func(float64) float64) error {
	if g.swapped.Load() {
		return g.cpu.EvaluateSeries(dst, times, eval)
	}

	if err := g.call(func() error { return g.accel.EvaluateSeries(dst, times, eval) }); err != nil {
		if isCallerError(err) {
			return err
		}
		g.fault(err)
		return g.cpu.EvaluateSeries(dst, times, eval)
	}

	return nil
}

func (g *guarded) WindowedMultiply(dst, frame, coeffs []float64) error {
	if g.swapped.Load() {
		return g.cpu.WindowedMultiply(dst, frame, coeffs)
	}

	if err := g.call(func() error { return g.accel.WindowedMultiply(dst, frame, coeffs) }); err != nil {
		if isCallerError(err) {
			return err
		}
		g.fault(err)
		return g.cpu.WindowedMultiply(dst, frame, coeffs)
	}

	return nil
}

func (g *guarded) TransformForward(dst []complex128, src []float64) error {
	if g.swapped.Load() {
		return g.cpu.TransformForward(dst, src)
	}

	if err := g.call(func() error { return g.accel.TransformForward(dst, src) }); err != nil {
		if isCallerError(err) {
			return err
		}
		g.fault(err)
		return g.cpu.TransformForward(dst, src)
	}

	return nil
}

func (g *guarded) TransformInverse(dst, src []complex128) error {
	if g.swapped.Load() {
		return g.cpu.TransformInverse(dst, src)
	}

	if err := g.call(func() error { return g.accel.TransformInverse(dst, src) }); err != nil {
		if isCallerError(err) {
			return err
		}
		g.fault(err)
		return g.cpu.TransformInverse(dst, src)
	}

	return nil
}
