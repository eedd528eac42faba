// Package smbios parses raw SMBIOS firmware tables in the RSMB layout
// returned by GetSystemFirmwareTable: an 8-byte header followed by a
// sequence of variable-length structures, each a fixed formatted region
// plus a string table terminated by two consecutive NUL bytes.
//
// The table can come from the running system (FromSystem) or from a caller
// supplied dump (FromBytes). Traversal is a linear forward scan; typed
// extraction decodes BIOS (type 0), system (type 1) and baseboard (type 2)
// structures at their fixed field offsets.
package smbios

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hwprobe/winraw/internal/encoding"
)

// headerSize is the size of the RSMB header preceding the structure table.
const headerSize = 8

// Well-known structure types
const (
	TypeBios      = 0
	TypeSystem    = 1
	TypeBaseboard = 2
)

// structPrefixSize is the fixed prefix every structure starts with:
// type, formatted length, handle.
const structPrefixSize = 4

// Header describes the firmware table: SMBIOS version and total structure
// table length in bytes, counted from the first structure.
type Header struct {
	Used20CallingMethod byte
	MajorVersion        byte
	MinorVersion        byte
	DMIRevision         byte
	Length              uint32
}

// Table holds an immutable copy of a raw SMBIOS firmware table.
type Table struct {
	data []byte
}

// FromBytes creates a table from a raw RSMB buffer. The buffer is copied;
// it must be at least as large as the 8-byte header.
func FromBytes(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidData, len(data), headerSize)
	}
	t := &Table{data: make([]byte, len(data))}
	copy(t.data, data)
	return t, nil
}

// FromSystem queries the platform firmware interface for the SMBIOS table.
func FromSystem() (*Table, error) {
	data, err := systemFirmwareTable()
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, &SysError{
			Op:  "firmware table query",
			Err: fmt.Errorf("%w: %d bytes", ErrInvalidData, len(data)),
		}
	}
	return &Table{data: data}, nil
}

// Header decodes the table header.
func (t *Table) Header() Header {
	r := encoding.NewReader(t.data)
	var h Header
	h.Used20CallingMethod, _ = r.ReadUint8()
	h.MajorVersion, _ = r.ReadUint8()
	h.MinorVersion, _ = r.ReadUint8()
	h.DMIRevision, _ = r.ReadUint8()
	h.Length, _ = r.ReadUint32()
	return h
}

// Raw returns a copy of the raw table bytes, header included.
func (t *Table) Raw() []byte {
	return append([]byte(nil), t.data...)
}

// limit returns the exclusive scan bound: Header.Length bytes past the
// first structure, clamped to the actual buffer. Computed in 64 bits so
// an absurd declared length cannot wrap on 32-bit platforms.
func (t *Table) limit() int {
	lim := int64(headerSize) + int64(t.Header().Length)
	if lim > int64(len(t.data)) {
		return len(t.data)
	}
	return int(lim)
}

// next returns the offset of the structure following the one at off, or -1
// when the scan would pass the table limit. The scan starts at the end of
// the formatted region and stops one byte past the second consecutive NUL.
func (t *Table) next(off, lim int) int {
	formedEnd := off + int(t.data[off+1])
	prevZero := false
	for p := formedEnd; p+1 < lim; p++ {
		if t.data[p] == 0 {
			if prevZero {
				return p + 1
			}
			prevZero = true
		} else {
			prevZero = false
		}
	}
	return -1
}

// structure scans forward for the first structure of the given type and
// returns its offset, or ErrNotFound.
func (t *Table) structure(typ byte) (int, error) {
	lim := t.limit()
	for off := headerSize; off >= 0 && off+structPrefixSize <= lim; off = t.next(off, lim) {
		if t.data[off] == typ {
			return off, nil
		}
	}
	return 0, fmt.Errorf("%w: no structure of type %d in table", ErrNotFound, typ)
}

// formedLength returns the structure's formatted-region length, clamped so
// field reads can never pass the table limit.
func (t *Table) formedLength(off, lim int) int {
	n := int(t.data[off+1])
	if off+n > lim {
		n = lim - off
	}
	return n
}

// byteField reads the raw byte at a fixed offset in the formatted region.
func (t *Table) byteField(off, fieldOff, lim int) (byte, error) {
	if fieldOff+1 > t.formedLength(off, lim) {
		return 0, fmt.Errorf("%w: field 0x%X beyond formatted region", ErrInvalidData, fieldOff)
	}
	return t.data[off+fieldOff], nil
}

// bytesField copies n raw bytes at a fixed offset in the formatted region.
func (t *Table) bytesField(off, fieldOff, n, lim int) ([]byte, error) {
	if fieldOff+n > t.formedLength(off, lim) {
		return nil, fmt.Errorf("%w: field 0x%X+%d beyond formatted region", ErrInvalidData, fieldOff, n)
	}
	out := make([]byte, n)
	copy(out, t.data[off+fieldOff:])
	return out, nil
}

// stringField resolves a string-index field: the byte at fieldOff is a
// 1-based index into the structure's string table. Index 0 means the
// structure carries no such string and is reported as ErrNoString, never
// as a silent empty string.
func (t *Table) stringField(off, fieldOff, lim int) (string, error) {
	idx, err := t.byteField(off, fieldOff, lim)
	if err != nil {
		return "", err
	}
	if idx == 0 {
		return "", fmt.Errorf("%w: offset 0x%X", ErrNoString, fieldOff)
	}

	r := encoding.NewReader(t.data[off+t.formedLength(off, lim) : lim])
	for i := byte(1); ; i++ {
		s, err := r.ReadCString()
		if err != nil {
			return "", fmt.Errorf("%w: string table truncated at index %d", ErrInvalidData, i)
		}
		if s == "" {
			// Hit the table terminator before reaching idx.
			return "", fmt.Errorf("%w: string index %d beyond string table", ErrInvalidData, idx)
		}
		if i == idx {
			return s, nil
		}
	}
}

// BiosInfo holds the decoded fields of the type 0 (BIOS information)
// structure.
type BiosInfo struct {
	Type        byte
	Length      byte
	Handle      uint16
	Vendor      string
	Version     string
	ReleaseDate string
	ROMSize     byte
}

// BiosInfo decodes the first BIOS information structure. Its absence, or a
// zero string index in a required field, is a data-integrity fault.
func (t *Table) BiosInfo() (*BiosInfo, error) {
	off, err := t.structure(TypeBios)
	if err != nil {
		return nil, err
	}
	lim := t.limit()

	info := &BiosInfo{
		Type:   t.data[off],
		Length: t.data[off+1],
		Handle: encoding.Uint16LE(t.data[off+2:]),
	}
	if info.Vendor, err = t.stringField(off, 0x4, lim); err != nil {
		return nil, fmt.Errorf("BIOS vendor: %w", err)
	}
	if info.Version, err = t.stringField(off, 0x5, lim); err != nil {
		return nil, fmt.Errorf("BIOS version: %w", err)
	}
	if info.ReleaseDate, err = t.stringField(off, 0x8, lim); err != nil {
		return nil, fmt.Errorf("BIOS release date: %w", err)
	}
	if info.ROMSize, err = t.byteField(off, 0x9, lim); err != nil {
		return nil, fmt.Errorf("BIOS ROM size: %w", err)
	}
	return info, nil
}

// SysInfo holds the decoded fields of the type 1 (system information)
// structure.
type SysInfo struct {
	Type         byte
	Length       byte
	Handle       uint16
	Manufacturer string
	Product      string
	Version      string
	SerialNumber string
	UUID         uuid.UUID
}

// SysInfo decodes the first system information structure.
func (t *Table) SysInfo() (*SysInfo, error) {
	off, err := t.structure(TypeSystem)
	if err != nil {
		return nil, err
	}
	lim := t.limit()

	info := &SysInfo{
		Type:   t.data[off],
		Length: t.data[off+1],
		Handle: encoding.Uint16LE(t.data[off+2:]),
	}
	if info.Manufacturer, err = t.stringField(off, 0x4, lim); err != nil {
		return nil, fmt.Errorf("system manufacturer: %w", err)
	}
	if info.Product, err = t.stringField(off, 0x5, lim); err != nil {
		return nil, fmt.Errorf("system product: %w", err)
	}
	if info.Version, err = t.stringField(off, 0x6, lim); err != nil {
		return nil, fmt.Errorf("system version: %w", err)
	}
	if info.SerialNumber, err = t.stringField(off, 0x7, lim); err != nil {
		return nil, fmt.Errorf("system serial number: %w", err)
	}
	raw, err := t.bytesField(off, 0x8, 16, lim)
	if err != nil {
		return nil, fmt.Errorf("system UUID: %w", err)
	}
	// The 16 bytes are adopted as stored; the firmware encoding is
	// little-endian on all platforms this table comes from.
	info.UUID, err = uuid.FromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("system UUID: %w", err)
	}
	return info, nil
}

// BaseboardInfo holds the decoded fields of the type 2 (baseboard
// information) structure.
type BaseboardInfo struct {
	Type         byte
	Length       byte
	Handle       uint16
	Manufacturer string
	Product      string
	Version      string
	SerialNumber string
}

// BaseboardInfo decodes the first baseboard information structure. Many
// machines simply have none, so absence returns (nil, nil) rather than an
// error.
func (t *Table) BaseboardInfo() (*BaseboardInfo, error) {
	off, err := t.structure(TypeBaseboard)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	lim := t.limit()

	info := &BaseboardInfo{
		Type:   t.data[off],
		Length: t.data[off+1],
		Handle: encoding.Uint16LE(t.data[off+2:]),
	}
	if info.Manufacturer, err = t.stringField(off, 0x4, lim); err != nil {
		return nil, fmt.Errorf("baseboard manufacturer: %w", err)
	}
	if info.Product, err = t.stringField(off, 0x5, lim); err != nil {
		return nil, fmt.Errorf("baseboard product: %w", err)
	}
	if info.Version, err = t.stringField(off, 0x6, lim); err != nil {
		return nil, fmt.Errorf("baseboard version: %w", err)
	}
	if info.SerialNumber, err = t.stringField(off, 0x7, lim); err != nil {
		return nil, fmt.Errorf("baseboard serial number: %w", err)
	}
	return info, nil
}

// Structure is a generic decoded record: the fixed prefix, the formatted
// region past the prefix, and the string table.
type Structure struct {
	Type      byte
	Length    byte
	Handle    uint16
	Formatted []byte
	Strings   []string
}

// Structures decodes every structure in the table, in table order.
func (t *Table) Structures() ([]Structure, error) {
	var out []Structure
	lim := t.limit()
	for off := headerSize; off >= 0 && off+structPrefixSize <= lim; off = t.next(off, lim) {
		s := Structure{
			Type:   t.data[off],
			Length: t.data[off+1],
			Handle: encoding.Uint16LE(t.data[off+2:]),
		}
		formedEnd := off + t.formedLength(off, lim)
		if formedEnd > off+structPrefixSize {
			s.Formatted = append([]byte(nil), t.data[off+structPrefixSize:formedEnd]...)
		}

		r := encoding.NewReader(t.data[formedEnd:lim])
		for {
			str, err := r.ReadCString()
			if err != nil || str == "" {
				break
			}
			s.Strings = append(s.Strings, str)
		}
		out = append(out, s)
	}
	return out, nil
}
