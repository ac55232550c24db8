// Package ringbuffer is the sample transport between the generator and the
// viewer: a fixed-size circular buffer that lives in shared memory and drops
// its oldest unread sample instead of blocking the producer.
//
// Visibility contract: sample slots are plain memory; the index fields are
// read and written with sync/atomic, so a sample becomes visible to the other
// process no later than the writePos store that follows it. Nothing else is
// synchronized. The consumer may observe a frame mid-write and both sides
// may move readPos, which the drop-oldest policy tolerates.
package ringbuffer

import (
	"sync/atomic"
	"unsafe"
)

// Capacity is the number of sample slots. It is a power of two so wrapping is
// a mask.
const Capacity = 16384

const mask = Capacity - 1

// Layout is the exact shape of the shared region. Both processes must be built
// from this definition; there is no version tag.
type Layout struct {
	Samples       [Capacity]float64
	writePos      int32
	readPos       int32
	newData       uint32
	_             uint32
	totalProduced uint64
}

// LayoutSize is the size in bytes of the shared region.
const LayoutSize = int(unsafe.Sizeof(Layout{}))

// Ring is a view over a Layout, either heap-allocated (New) or mapped from a
// shared segment (Create, Open). One process writes, one process drains.
type Ring struct {
	l   *Layout
	seg *segment
}

// New creates a ring that is private to this process.
func New() *Ring {
	return &Ring{l: new(Layout)}
}

// Write appends one sample at writePos. If that fills the buffer, the oldest
// unread sample is discarded by moving readPos forward. It reports whether a
// sample was discarded.
func (r *Ring) Write(sample float64) bool {
	l := r.l
	w := atomic.LoadInt32(&l.writePos)
	l.Samples[w] = sample
	next := (w + 1) & mask

	overwrote := false
	if rd := atomic.LoadInt32(&l.readPos); next == rd {
		// A failed swap means the consumer committed past rd meanwhile.
		overwrote = atomic.CompareAndSwapInt32(&l.readPos, rd, (rd+1)&mask)
	}
	atomic.StoreInt32(&l.writePos, next)
	atomic.AddUint64(&l.totalProduced, 1)
	return overwrote
}

// WriteFrame appends samples in order and then flags new data for the
// consumer. It returns how many unread samples were discarded.
func (r *Ring) WriteFrame(samples []float64) int {
	if len(samples) == 0 {
		return 0
	}
	dropped := 0
	for _, s := range samples {
		if r.Write(s) {
			dropped++
		}
	}
	atomic.StoreUint32(&r.l.newData, 1)
	return dropped
}

// Drain clears the new-data flag, then appends every unread sample from
// readPos up to writePos to dst and commits readPos. A frame finished after
// the flag is cleared sets it again, so it is never left unannounced.
// Consumer side only.
func (r *Ring) Drain(dst []float64) []float64 {
	l := r.l
	atomic.StoreUint32(&l.newData, 0)
	w := atomic.LoadInt32(&l.writePos)
	rd := atomic.LoadInt32(&l.readPos)
	for rd != w {
		dst = append(dst, l.Samples[rd])
		rd = (rd + 1) & mask
	}
	atomic.StoreInt32(&l.readPos, rd)
	return dst
}

// Snapshot returns a copy of the last n written samples, oldest first,
// without consuming anything. Fewer are returned if fewer were ever written.
func (r *Ring) Snapshot(n int) []float64 {
	if n <= 0 {
		return nil
	}
	total := r.TotalProduced()
	if uint64(n) > total {
		n = int(total)
	}
	if n > Capacity {
		n = Capacity
	}
	if n == 0 {
		return nil
	}

	out := make([]float64, n)
	start := (int(r.WritePos()) - n + Capacity) & mask
	if start+n <= Capacity {
		copy(out, r.l.Samples[start:start+n])
	} else {
		first := Capacity - start
		copy(out[:first], r.l.Samples[start:])
		copy(out[first:], r.l.Samples[:n-first])
	}
	return out
}

// NewDataAvailable reports whether a frame was written since the last Drain.
func (r *Ring) NewDataAvailable() bool {
	return atomic.LoadUint32(&r.l.newData) != 0
}

func (r *Ring) WritePos() int {
	return int(atomic.LoadInt32(&r.l.writePos))
}

func (r *Ring) ReadPos() int {
	return int(atomic.LoadInt32(&r.l.readPos))
}

// TotalProduced is the number of samples ever written.
func (r *Ring) TotalProduced() uint64 {
	return atomic.LoadUint64(&r.l.totalProduced)
}

// Available is the number of unread samples, at most Capacity-1.
func (r *Ring) Available() int {
	return (r.WritePos() - r.ReadPos() + Capacity) & mask
}

// Reset zeroes the whole layout. The producer calls it once after creating
// the segment.
func (r *Ring) Reset() {
	*r.l = Layout{}
}
