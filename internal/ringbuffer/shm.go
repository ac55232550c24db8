package ringbuffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

var ErrSegmentTooSmall = errors.New("ringbuffer: segment smaller than layout")

type segment struct {
	file  *os.File
	mem   []byte
	path  string
	owner bool
}

// SegmentPath resolves a segment name. Absolute paths are used as given;
// other names live in /dev/shm, or the temp dir when /dev/shm is missing.
func SegmentPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", name)
	}
	return filepath.Join(os.TempDir(), name)
}

// Create makes a fresh shared segment for the producer, replacing any stale
// one, and returns a zeroed ring mapped onto it. Close removes the segment.
func Create(name string) (*Ring, error) {
	path := SegmentPath(name)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale segment %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("create segment %s: %w", path, err)
	}

	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(LayoutSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("resize segment: %w", err)
	}

	mem, err := mmapFile(file, LayoutSize)
	if err != nil {
		cleanup()
		return nil, err
	}

	r := &Ring{
		l:   (*Layout)(unsafe.Pointer(&mem[0])),
		seg: &segment{file: file, mem: mem, path: path, owner: true},
	}
	r.Reset()
	return r, nil
}

// Open maps an existing segment for the consumer.
func Open(name string) (*Ring, error) {
	path := SegmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open segment %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat segment: %w", err)
	}
	if info.Size() < int64(LayoutSize) {
		file.Close()
		return nil, fmt.Errorf("%w: %d < %d bytes", ErrSegmentTooSmall, info.Size(), LayoutSize)
	}

	mem, err := mmapFile(file, LayoutSize)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Ring{
		l:   (*Layout)(unsafe.Pointer(&mem[0])),
		seg: &segment{file: file, mem: mem, path: path},
	}, nil
}

// Path is the segment file backing the ring, or "" for a private ring.
func (r *Ring) Path() string {
	if r.seg == nil {
		return ""
	}
	return r.seg.path
}

// Close unmaps the segment and, for the creating process, removes it. The
// ring must not be used afterwards.
func (r *Ring) Close() error {
	if r.seg == nil {
		return nil
	}
	seg := r.seg
	r.seg = nil
	r.l = nil

	var errs []error
	if err := unix.Munmap(seg.mem); err != nil {
		errs = append(errs, fmt.Errorf("munmap: %w", err))
	}
	if err := seg.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if seg.owner {
		if err := os.Remove(seg.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func mmapFile(file *os.File, size int) ([]byte, error) {
	mem, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	return mem, nil
}
