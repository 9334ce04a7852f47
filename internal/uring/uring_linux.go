//go:build linux

package uring

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Operation codes from <linux/io_uring.h>.
const (
	opOpenat uint8 = 18
	opStatx  uint8 = 21
	opRead   uint8 = 22
)

const (
	offSQRing = 0
	offCQRing = 0x8000000
	offSQEs   = 0x10000000

	featSingleMmap = 1 << 0

	enterGetEvents = 1 << 0

	sqeSize = 64
	cqeSize = 16

	// MaxEntries is the largest submission ring the kernel accepts.
	MaxEntries = 32768
)

// ErrUnavailable reports that the kernel refused to create a ring.
var ErrUnavailable = errors.New("uring: io_uring unavailable")

// ErrQueueFull is returned when no submission slot is free.
var ErrQueueFull = errors.New("uring: submission queue full")

type sqringOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	flags       uint32
	dropped     uint32
	array       uint32
	resv1       uint32
	userAddr    uint64
}

type cqringOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	overflow    uint32
	cqes        uint32
	flags       uint32
	resv1       uint32
	userAddr    uint64
}

type params struct {
	sqEntries    uint32
	cqEntries    uint32
	flags        uint32
	sqThreadCPU  uint32
	sqThreadIdle uint32
	features     uint32
	wqFD         uint32
	resv         [3]uint32
	sqOff        sqringOffsets
	cqOff        cqringOffsets
}

// sqe mirrors struct io_uring_sqe.
type sqe struct {
	opcode      uint8
	flags       uint8
	ioprio      uint16
	fd          int32
	off         uint64
	addr        uint64
	len         uint32
	opFlags     uint32
	userData    uint64
	bufIndex    uint16
	personality uint16
	spliceFDIn  int32
	addr3       uint64
	pad         uint64
}

// cqe mirrors struct io_uring_cqe.
type cqe struct {
	userData uint64
	res      int32
	flags    uint32
}

// Ring is an io_uring instance with its rings mapped into memory.
type Ring struct {
	fd int

	sqRing []byte
	cqRing []byte
	sqeMem []byte

	sqHead  *uint32
	sqTail  *uint32
	sqMask  uint32
	sqCap   uint32
	sqArray []uint32

	cqHead *uint32
	cqTail *uint32
	cqMask uint32
	cqOff  uint32

	// Local submission bookkeeping: SQEs in [sqeHead, sqeTail) are
	// prepared but not yet published to the kernel.
	sqeHead uint32
	sqeTail uint32
}

// New creates a ring with room for at least entries submissions.
func New(entries uint32) (*Ring, error) {
	if entries == 0 {
		entries = 1
	}
	if entries > MaxEntries {
		entries = MaxEntries
	}

	var p params
	fd, _, errno := unix.Syscall(unix.SYS_IO_URING_SETUP, uintptr(entries), uintptr(unsafe.Pointer(&p)), 0)
	if errno != 0 {
		switch errno {
		case unix.ENOSYS, unix.EPERM, unix.EACCES:
			return nil, fmt.Errorf("%w: io_uring_setup: %v", ErrUnavailable, errno)
		}
		return nil, fmt.Errorf("io_uring_setup: %w", errno)
	}

	r := &Ring{fd: int(fd)}
	if err := r.mmap(&p); err != nil {
		unix.Close(r.fd)
		return nil, err
	}
	return r, nil
}

func (r *Ring) mmap(p *params) error {
	sqSize := int(p.sqOff.array + p.sqEntries*4)
	cqSize := int(p.cqOff.cqes + p.cqEntries*cqeSize)
	single := p.features&featSingleMmap != 0
	if single && cqSize > sqSize {
		sqSize = cqSize
	}

	var err error
	r.sqRing, err = unix.Mmap(r.fd, offSQRing, sqSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return fmt.Errorf("mmap sq ring: %w", err)
	}

	if single {
		r.cqRing = r.sqRing
	} else {
		r.cqRing, err = unix.Mmap(r.fd, offCQRing, cqSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
		if err != nil {
			r.unmap()
			return fmt.Errorf("mmap cq ring: %w", err)
		}
	}

	r.sqeMem, err = unix.Mmap(r.fd, offSQEs, int(p.sqEntries)*sqeSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		r.unmap()
		return fmt.Errorf("mmap sqes: %w", err)
	}

	r.sqHead = (*uint32)(unsafe.Pointer(&r.sqRing[p.sqOff.head]))
	r.sqTail = (*uint32)(unsafe.Pointer(&r.sqRing[p.sqOff.tail]))
	r.sqMask = *(*uint32)(unsafe.Pointer(&r.sqRing[p.sqOff.ringMask]))
	r.sqCap = *(*uint32)(unsafe.Pointer(&r.sqRing[p.sqOff.ringEntries]))
	r.sqArray = unsafe.Slice((*uint32)(unsafe.Pointer(&r.sqRing[p.sqOff.array])), p.sqEntries)

	r.cqHead = (*uint32)(unsafe.Pointer(&r.cqRing[p.cqOff.head]))
	r.cqTail = (*uint32)(unsafe.Pointer(&r.cqRing[p.cqOff.tail]))
	r.cqMask = *(*uint32)(unsafe.Pointer(&r.cqRing[p.cqOff.ringMask]))
	r.cqOff = p.cqOff.cqes

	r.sqeHead = atomic.LoadUint32(r.sqTail)
	r.sqeTail = r.sqeHead
	return nil
}

func (r *Ring) unmap() {
	if r.sqeMem != nil {
		_ = unix.Munmap(r.sqeMem)
		r.sqeMem = nil
	}
	if r.cqRing != nil && &r.cqRing[0] != &r.sqRing[0] {
		_ = unix.Munmap(r.cqRing)
	}
	r.cqRing = nil
	if r.sqRing != nil {
		_ = unix.Munmap(r.sqRing)
		r.sqRing = nil
	}
}

// Cap returns the number of submission slots.
func (r *Ring) Cap() int {
	return int(r.sqCap)
}

// Close unmaps the rings and closes the ring descriptor.
func (r *Ring) Close() error {
	r.unmap()
	if r.fd < 0 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	return err
}

func (r *Ring) nextSQE() (*sqe, error) {
	head := atomic.LoadUint32(r.sqHead)
	if r.sqeTail-head >= r.sqCap {
		return nil, ErrQueueFull
	}
	idx := r.sqeTail & r.sqMask
	e := (*sqe)(unsafe.Pointer(&r.sqeMem[uintptr(idx)*sqeSize]))
	*e = sqe{}
	r.sqeTail++
	return e, nil
}

// PrepStatx queues a statx(2) of the NUL-terminated path relative to dirfd.
func (r *Ring) PrepStatx(userData uint64, dirfd int, path []byte, flags int, mask uint32, stx *unix.Statx_t) error {
	e, err := r.nextSQE()
	if err != nil {
		return err
	}
	e.opcode = opStatx
	e.fd = int32(dirfd)
	e.addr = uint64(uintptr(unsafe.Pointer(&path[0])))
	e.len = mask
	e.off = uint64(uintptr(unsafe.Pointer(stx)))
	e.opFlags = uint32(flags)
	e.userData = userData
	return nil
}

// PrepOpenat queues an openat(2) of the NUL-terminated path.
func (r *Ring) PrepOpenat(userData uint64, dirfd int, path []byte, flags int, mode uint32) error {
	e, err := r.nextSQE()
	if err != nil {
		return err
	}
	e.opcode = opOpenat
	e.fd = int32(dirfd)
	e.addr = uint64(uintptr(unsafe.Pointer(&path[0])))
	e.len = mode
	e.opFlags = uint32(flags)
	e.userData = userData
	return nil
}

// PrepRead queues a read of len(buf) bytes from fd at offset.
func (r *Ring) PrepRead(userData uint64, fd int, buf []byte, offset uint64) error {
	e, err := r.nextSQE()
	if err != nil {
		return err
	}
	e.opcode = opRead
	e.fd = int32(fd)
	e.addr = uint64(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	e.len = uint32(len(buf))
	e.off = offset
	e.userData = userData
	return nil
}

// flush publishes prepared SQEs to the kernel and returns how many
// published entries the kernel has not consumed yet.
func (r *Ring) flush() uint32 {
	tail := atomic.LoadUint32(r.sqTail)
	for r.sqeHead != r.sqeTail {
		r.sqArray[tail&r.sqMask] = r.sqeHead & r.sqMask
		tail++
		r.sqeHead++
	}
	atomic.StoreUint32(r.sqTail, tail)
	return tail - atomic.LoadUint32(r.sqHead)
}

// Submit hands every prepared submission to the kernel without waiting.
func (r *Ring) Submit() (int, error) {
	return r.SubmitAndWait(0)
}

// SubmitAndWait hands prepared submissions to the kernel and blocks until
// at least waitNr completions are available.
func (r *Ring) SubmitAndWait(waitNr uint32) (int, error) {
	var flags uintptr
	if waitNr > 0 {
		flags |= enterGetEvents
	}

	for {
		toSubmit := r.flush()
		if toSubmit == 0 && waitNr == 0 {
			return 0, nil
		}

		n, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER, uintptr(r.fd), uintptr(toSubmit), uintptr(waitNr), flags, 0, 0)
		switch errno {
		case 0:
			return int(n), nil
		case unix.EINTR:
			continue
		default:
			return int(n), fmt.Errorf("io_uring_enter: %w", errno)
		}
	}
}

// Drain calls fn for every completion currently in the completion ring and
// marks them consumed. It returns the number of completions seen.
func (r *Ring) Drain(fn func(userData uint64, res int32)) int {
	head := atomic.LoadUint32(r.cqHead)
	tail := atomic.LoadUint32(r.cqTail)
	n := 0
	for ; head != tail; head++ {
		off := uintptr(r.cqOff) + uintptr(head&r.cqMask)*cqeSize
		c := (*cqe)(unsafe.Pointer(&r.cqRing[off]))
		userData, res := c.userData, c.res
		// Release the slot before running the callback so that fn may
		// prepare follow-up submissions freely.
		atomic.StoreUint32(r.cqHead, head+1)
		fn(userData, res)
		n++
	}
	return n
}
