package host

import (
	"golang.org/x/sys/unix"
)

// CODE_BUFFER_SIZE is the default size of a code buffer.
const CODE_BUFFER_SIZE = 1 << 20

// CodeBuffer is an anonymous mapping holding the native encodings of
// compiled blocks, for listings and size accounting.
type CodeBuffer struct {
	mem  []byte
	used int
}

// NewCodeBuffer maps a buffer of the given size.
func NewCodeBuffer(size int) (buf *CodeBuffer, err error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return
	}

	buf = &CodeBuffer{mem: mem}
	return
}

// Append copies code into the buffer, returning its offset.
func (buf *CodeBuffer) Append(code []byte) (offset int, err error) {
	if buf.mem == nil {
		err = ErrCodeBufferFree
		return
	}
	if buf.used+len(code) > len(buf.mem) {
		err = ErrCodeBufferFull
		return
	}

	offset = buf.used
	copy(buf.mem[offset:], code)
	buf.used += len(code)
	return
}

// Code returns the bytes at an offset.
func (buf *CodeBuffer) Code(offset, size int) []byte {
	return buf.mem[offset : offset+size]
}

// Used returns the number of bytes in use.
func (buf *CodeBuffer) Used() int {
	return buf.used
}

// Reset discards every block.
func (buf *CodeBuffer) Reset() {
	clear(buf.mem[:buf.used])
	buf.used = 0
}

// Release unmaps the buffer.
func (buf *CodeBuffer) Release() (err error) {
	if buf.mem == nil {
		return
	}
	err = unix.Munmap(buf.mem)
	buf.mem = nil
	buf.used = 0
	return
}
