package compute

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// planCache shares FFT plans and their scratch buffers across engines.
// Plans are created once per size; each slot serializes its own transforms
// so concurrent sessions on distinct sizes never contend.
type planCache struct {
	mu    sync.Mutex
	slots map[int]*planSlot
}

type planSlot struct {
	mu   sync.Mutex
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
}

var plans = &planCache{slots: make(map[int]*planSlot)}

func (c *planCache) get(size int) (*planSlot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.slots[size]; ok {
		return s, nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("compute: fft plan size %d: %w", size, err)
	}

	s := &planSlot{
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
	}
	c.slots[size] = s

	return s, nil
}

// forwardReal transforms the real signal src zero-padded to the size implied
// by dst (len(dst) == size/2+1) and writes the non-negative bins into dst.
func (c *planCache) forwardReal(dst []complex128, src []float64) error {
	if len(dst) < 2 {
		return &TransformSizeError{Size: len(dst), Reason: "needs at least 2 output bins"}
	}

	size := 2 * (len(dst) - 1)
	if err := validateTransformSize(size, len(src)); err != nil {
		return err
	}

	slot, err := c.get(size)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	for i, v := range src {
		slot.in[i] = complex(v, 0)
	}
	for i := len(src); i < size; i++ {
		slot.in[i] = 0
	}

	if err := slot.plan.Forward(slot.out, slot.in); err != nil {
		return fmt.Errorf("compute: forward fft: %w", err)
	}

	copy(dst, slot.out[:len(dst)])

	return nil
}

// inverse runs a normalized inverse transform of a full complex spectrum.
func (c *planCache) inverse(dst, src []complex128) error {
	if len(dst) != len(src) {
		return errLengthMismatch
	}
	if err := validateTransformSize(len(src), 0); err != nil {
		return err
	}

	slot, err := c.get(len(src))
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if err := slot.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("compute: inverse fft: %w", err)
	}

	return nil
}
