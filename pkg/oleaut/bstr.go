package oleaut

import (
	"fmt"

	"github.com/hwprobe/winraw/internal/encoding"
)

// EncodeBSTR serializes a string in BSTR wire layout: a 4-byte little-endian
// byte length of the character data, the data itself in UTF-16LE, and a
// two-byte NUL terminator. The length prefix does not cover the terminator.
func EncodeBSTR(s string) []byte {
	chars := encoding.ToUTF16LEWithNull(s)
	buf := make([]byte, 0, 4+len(chars))
	buf = encoding.AppendUint32LE(buf, uint32(len(chars)-2))
	return append(buf, chars...)
}

// DecodeBSTR parses a BSTR wire buffer produced by EncodeBSTR or by a
// platform marshaller. The buffer must contain the full length prefix,
// character data and terminator.
func DecodeBSTR(b []byte) (string, error) {
	r := encoding.NewReader(b)
	n, err := r.ReadUint32()
	if err != nil {
		return "", fmt.Errorf("BSTR length prefix: %w", err)
	}
	chars, err := r.ReadBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("BSTR character data: %w", err)
	}
	if _, err := r.ReadUint16(); err != nil {
		return "", fmt.Errorf("BSTR terminator: %w", err)
	}
	return encoding.FromUTF16LE(chars), nil
}
