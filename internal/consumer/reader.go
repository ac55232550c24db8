package consumer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/WaveStream/internal/ringbuffer"
)

// Reader lifecycle states.
const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateStopped  = "stopped"
)

// DefaultPollInterval is how often the reader checks the ring.
const DefaultPollInterval = 2 * time.Millisecond

// ErrAlreadyRunning is returned by Start on a reader that is already started.
var ErrAlreadyRunning = errors.New("reader already running")

// Ring is the consumer's view of the shared ring. *ringbuffer.Ring satisfies it.
type Ring interface {
	WritePos() int
	NewDataAvailable() bool
	Drain(dst []float64) []float64
}

// Status describes the reader at a point in time.
type Status struct {
	State       string `json:"state"`
	SamplesRead int64  `json:"samplesRead"`
	Drains      int64  `json:"drains"`
	Buffered    int    `json:"buffered"`
}

// Reader polls a ring and moves newly published samples into a History.
type Reader struct {
	ring    Ring
	history *History
	poll    time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	state  string
	cancel context.CancelFunc

	samples atomic.Int64
	drains  atomic.Int64
}

// NewReader creates a stopped reader. A non-positive poll uses DefaultPollInterval.
func NewReader(ring Ring, history *History, poll time.Duration, logger *zap.Logger) *Reader {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Reader{
		ring:    ring,
		history: history,
		poll:    poll,
		logger:  logger.With(zap.String("component", "reader")),
		state:   StateStopped,
	}
}

// Start polls until ctx is cancelled or Stop is called.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateStopped {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.state = StateStarting
	readCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	defer cancel()

	r.mu.Lock()
	r.state = StateRunning
	r.mu.Unlock()
	r.logger.Info("reader started", zap.Duration("poll", r.poll))

	r.loop(readCtx)

	r.mu.Lock()
	r.state = StateStopped
	r.cancel = nil
	r.mu.Unlock()
	r.logger.Info("reader stopped",
		zap.Int64("samplesRead", r.samples.Load()),
		zap.Int64("drains", r.drains.Load()))
	return nil
}

func (r *Reader) loop(ctx context.Context) {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	buf := make([]float64, 0, ringbuffer.Capacity)
	last := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		buf, last = r.drainOnce(buf, last)
	}
}

// drainOnce drains once if the write index moved and new data was flagged.
func (r *Reader) drainOnce(buf []float64, last int) ([]float64, int) {
	w := r.ring.WritePos()
	if w == last || !r.ring.NewDataAvailable() {
		return buf, last
	}
	buf = r.ring.Drain(buf[:0])
	if len(buf) > 0 {
		r.history.Push(buf...)
		r.samples.Add(int64(len(buf)))
		r.drains.Add(1)
	}
	return buf, w
}

// Stop cancels a running reader. Idempotent.
func (r *Reader) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *Reader) Status() Status {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	return Status{
		State:       state,
		SamplesRead: r.samples.Load(),
		Drains:      r.drains.Load(),
		Buffered:    r.history.Len(),
	}
}
