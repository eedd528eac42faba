package encoding

import (
	"errors"
	"fmt"
)

// ErrUnderflow is returned when a read would pass the end of the buffer.
var ErrUnderflow = errors.New("buffer underflow")

// Reader provides sequential bounds-checked reading of little-endian data.
type Reader struct {
	data   []byte
	offset int
}

// NewReader creates a reader over data. The reader does not copy data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns bytes left to read.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int) error {
	if r.offset+n > len(r.data) {
		return fmt.Errorf("%w: skip %d with %d remaining", ErrUnderflow, n, r.Remaining())
	}
	r.offset += n
	return nil
}

// ReadUint8 reads a uint8.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.offset >= len(r.data) {
		return 0, ErrUnderflow
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.offset+2 > len(r.data) {
		return 0, ErrUnderflow
	}
	v := Uint16LE(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, ErrUnderflow
	}
	v := Uint32LE(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.offset+8 > len(r.data) {
		return 0, ErrUnderflow
	}
	v := Uint64LE(r.data[r.offset:])
	r.offset += 8
	return v, nil
}

// ReadBytes reads n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, fmt.Errorf("%w: read %d with %d remaining", ErrUnderflow, n, r.Remaining())
	}
	data := make([]byte, n)
	copy(data, r.data[r.offset:r.offset+n])
	r.offset += n
	return data, nil
}

// ReadCString reads a NUL-terminated byte string, consuming the terminator.
// The empty string is valid and consumes a single NUL byte.
func (r *Reader) ReadCString() (string, error) {
	start := r.offset
	for i := r.offset; i < len(r.data); i++ {
		if r.data[i] == 0 {
			r.offset = i + 1
			return string(r.data[start:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string", ErrUnderflow)
}
