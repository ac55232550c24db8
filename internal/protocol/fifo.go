package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

var (
	ErrShortWrite = errors.New("protocol: short command write")
	ErrClosed     = errors.New("protocol: endpoint closed")
)

// CreateFIFO replaces whatever is at path with a fresh named pipe.
func CreateFIFO(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale fifo %s: %w", path, err)
	}
	if err := unix.Mkfifo(path, 0o666); err != nil {
		return fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return nil
}

// Receiver is the generator's end of the command FIFO. Reads never block.
type Receiver struct {
	path string
	fd   int
	buf  [RecordSize]byte

	received atomic.Int64
	partial  atomic.Int64
}

// OpenReceiver opens an existing FIFO for non-blocking reads.
func OpenReceiver(path string) (*Receiver, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open fifo %s: %w", path, err)
	}
	return &Receiver{path: path, fd: fd}, nil
}

// Poll makes one non-blocking read. It reports false when nothing is pending,
// when no writer is attached, or when fewer than RecordSize bytes arrived. A
// partial record is dropped, not reassembled.
func (r *Receiver) Poll() (Command, bool) {
	if r.fd < 0 {
		return Command{}, false
	}
	n, err := unix.Read(r.fd, r.buf[:])
	if err != nil || n <= 0 {
		return Command{}, false
	}
	if n < RecordSize {
		r.partial.Add(1)
		return Command{}, false
	}
	cmd, err := Decode(r.buf[:n])
	if err != nil {
		r.partial.Add(1)
		return Command{}, false
	}
	r.received.Add(1)
	return cmd, true
}

// Received is the number of complete records read so far.
func (r *Receiver) Received() int64 { return r.received.Load() }

// PartialRecords is the number of short reads that were discarded.
func (r *Receiver) PartialRecords() int64 { return r.partial.Load() }

func (r *Receiver) Path() string { return r.path }

// Close releases the descriptor. The FIFO stays on disk; see Remove.
func (r *Receiver) Close() error {
	if r.fd < 0 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	return err
}

// Remove unlinks the FIFO path.
func (r *Receiver) Remove() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sender is the controller's end of the command FIFO.
type Sender struct {
	path string

	mu sync.Mutex
	fd int
}

// Dial waits until the generator has created the FIFO and opened it for
// reading, then returns a blocking writer. This is the one-time startup
// handshake; it only gives up when ctx is done.
func Dial(ctx context.Context, path string, pollInterval time.Duration) (*Sender, error) {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	for {
		fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err == nil {
			if err := unix.SetNonblock(fd, false); err != nil {
				unix.Close(fd)
				return nil, fmt.Errorf("set fifo blocking: %w", err)
			}
			return &Sender{path: path, fd: fd}, nil
		}
		// ENOENT: not created yet. ENXIO: created but no reader yet.
		if !errors.Is(err, unix.ENOENT) && !errors.Is(err, unix.ENXIO) {
			return nil, fmt.Errorf("open fifo %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for generator on %s: %w", path, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// Send writes exactly one record with a single write call.
func (s *Sender) Send(cmd Command) error {
	rec := Encode(cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return ErrClosed
	}
	n, err := unix.Write(s.fd, rec[:])
	if err != nil {
		return fmt.Errorf("write %s: %w", cmd, err)
	}
	if n != RecordSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, RecordSize)
	}
	return nil
}

func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
