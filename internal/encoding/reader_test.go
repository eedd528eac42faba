package encoding

import (
	"errors"
	"testing"
)

func TestReaderScalars(t *testing.T) {
	data := []byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12}
	r := NewReader(data)

	if v, err := r.ReadUint8(); err != nil || v != 0x01 {
		t.Fatalf("ReadUint8 = 0x%02X, %v, want 0x01", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Fatalf("ReadUint16 = 0x%04X, %v, want 0x1234", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0x12345678 {
		t.Fatalf("ReadUint32 = 0x%08X, %v, want 0x12345678", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
	if _, err := r.ReadUint8(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("read past end: err = %v, want ErrUnderflow", err)
	}
}

func TestReaderCString(t *testing.T) {
	r := NewReader([]byte{'H', 'i', 0, 0, 'x'})

	if s, err := r.ReadCString(); err != nil || s != "Hi" {
		t.Fatalf("ReadCString = %q, %v, want %q", s, err, "Hi")
	}
	if s, err := r.ReadCString(); err != nil || s != "" {
		t.Fatalf("second ReadCString = %q, %v, want empty", s, err)
	}
	if _, err := r.ReadCString(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("unterminated string: err = %v, want ErrUnderflow", err)
	}
}

func TestReaderSkipAndBytes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})

	if err := r.Skip(2); err != nil || r.Offset() != 2 {
		t.Fatalf("Skip(2): %v, offset %d", err, r.Offset())
	}
	b, err := r.ReadBytes(2)
	if err != nil || b[0] != 3 || b[1] != 4 {
		t.Fatalf("ReadBytes(2) = % X, %v, want 03 04", b, err)
	}
	if err := r.Skip(2); !errors.Is(err, ErrUnderflow) {
		t.Errorf("Skip past end: err = %v, want ErrUnderflow", err)
	}
}
