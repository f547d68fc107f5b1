// Package ring provides the fixed-capacity frame buffer between the
// streaming producer and its consumers. Writes overwrite the oldest frame
// once the buffer is full and never block; readers take snapshots and never
// block the writer. Frames are published as immutable values through atomic
// pointers, so a snapshot can never observe a torn write and no lock is held
// across a scan.
package ring

import (
	"sync/atomic"
	"time"
)

// Frame is one produced chunk of samples. Seq is the monotone producer
// sequence number, Start the stream offset of the first sample.
type Frame struct {
	Seq     uint64
	Start   time.Duration
	Samples []float64
}

// Buffer is a single-writer, multi-reader frame ring.
type Buffer struct {
	slots    []atomic.Pointer[Frame]
	frameLen int
	written  atomic.Uint64
}

// New returns a ring holding up to capacity frames of frameLen samples.
func New(capacity, frameLen int) (*Buffer, error) {
	if capacity < 1 {
		return nil, &SizeError{Field: "capacity", Value: capacity}
	}
	if frameLen < 1 {
		return nil, &SizeError{Field: "frame length", Value: frameLen}
	}

	return &Buffer{
		slots:    make([]atomic.Pointer[Frame], capacity),
		frameLen: frameLen,
	}, nil
}

// Write publishes the next frame, overwriting the oldest when full. Only
// one goroutine may write. samples must hold exactly FrameLen values; the
// ring keeps its own copy.
func (b *Buffer) Write(start time.Duration, samples []float64) (uint64, error) {
	if len(samples) != b.frameLen {
		return 0, &SizeError{Field: "samples length", Value: len(samples), Want: b.frameLen}
	}

	seq := b.written.Load()
	frame := &Frame{
		Seq:     seq,
		Start:   start,
		Samples: append([]float64(nil), samples...),
	}

	b.slots[seq%uint64(len(b.slots))].Store(frame)
	b.written.Store(seq + 1)

	return seq, nil
}

// Snapshot returns copies of up to k of the most recent frames in write
// order (oldest first). Fewer frames are returned when fewer have been
// written. k <= 0 yields nil. Safe to call concurrently with Write.
func (b *Buffer) Snapshot(k int) []Frame {
	if k <= 0 {
		return nil
	}

	w := b.written.Load()
	if w == 0 {
		return nil
	}

	n := uint64(k)
	if c := uint64(len(b.slots)); n > c {
		n = c
	}
	if n > w {
		n = w
	}

	out := make([]Frame, 0, n)
	for g := w - n; g < w; g++ {
		f := b.slots[g%uint64(len(b.slots))].Load()
		if f == nil || f.Seq < w-n {
			continue
		}
		out = append(out, Frame{
			Seq:     f.Seq,
			Start:   f.Start,
			Samples: append([]float64(nil), f.Samples...),
		})
	}

	// The writer may have lapped a slot mid-scan, leaving newer frames out
	// of order; restore write order and trim to the k freshest.
	sortFrames(out)
	if len(out) > k {
		out = out[len(out)-k:]
	}

	return out
}

// Latest returns a copy of the most recent frame, if any.
func (b *Buffer) Latest() (Frame, bool) {
	frames := b.Snapshot(1)
	if len(frames) == 0 {
		return Frame{}, false
	}
	return frames[0], true
}

// Len returns the number of frames currently stored.
func (b *Buffer) Len() int {
	w := b.written.Load()
	if c := uint64(len(b.slots)); w > c {
		return int(c)
	}
	return int(w)
}

// Cap returns the frame capacity.
func (b *Buffer) Cap() int {
	return len(b.slots)
}

// FrameLen returns the fixed per-frame sample count.
func (b *Buffer) FrameLen() int {
	return b.frameLen
}

// Written returns the total number of frames ever written.
func (b *Buffer) Written() uint64 {
	return b.written.Load()
}

// Reset clears the ring. Only the writer may call it.
func (b *Buffer) Reset() {
	for i := range b.slots {
		b.slots[i].Store(nil)
	}
	b.written.Store(0)
}

// sortFrames orders by Seq ascending. Snapshots are nearly sorted already,
// so insertion sort is the right tool.
func sortFrames(frames []Frame) {
	for i := 1; i < len(frames); i++ {
		f := frames[i]
		j := i - 1
		for j >= 0 && frames[j].Seq > f.Seq {
			frames[j+1] = frames[j]
			j--
		}
		frames[j+1] = f
	}
}
