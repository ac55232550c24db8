// Package consumer reads samples out of the shared ring on the viewer side and
// hands them to the renderer through a bounded History window.
package consumer

import "sync"

// DefaultHistoryPoints is the window the viewer keeps for rendering.
const DefaultHistoryPoints = 800

// History keeps the newest samples up to a fixed limit. It is the only state
// shared between the reader and render goroutines.
type History struct {
	mu    sync.Mutex
	limit int
	buf   []float64
}

// NewHistory returns an empty window. A non-positive limit uses DefaultHistoryPoints.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryPoints
	}
	return &History{limit: limit, buf: make([]float64, 0, limit)}
}

// Push appends samples, dropping the oldest beyond the limit.
func (h *History) Push(samples ...float64) {
	if len(samples) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(samples) >= h.limit {
		h.buf = append(h.buf[:0], samples[len(samples)-h.limit:]...)
		return
	}
	if over := len(h.buf) + len(samples) - h.limit; over > 0 {
		n := copy(h.buf, h.buf[over:])
		h.buf = h.buf[:n]
	}
	h.buf = append(h.buf, samples...)
}

// Snapshot returns a copy of the window, oldest first.
func (h *History) Snapshot() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.buf))
	copy(out, h.buf)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buf)
}

func (h *History) Limit() int { return h.limit }
