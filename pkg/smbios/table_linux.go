//go:build linux

package smbios

import (
	"bytes"
	"os"

	"github.com/hwprobe/winraw/internal/encoding"
	"github.com/hwprobe/winraw/pkg/debug"
)

// Kernel-exported DMI table files
const (
	sysfsEntryPoint = "/sys/firmware/dmi/tables/smbios_entry_point"
	sysfsDMI        = "/sys/firmware/dmi/tables/DMI"
)

// systemFirmwareTable reads the structure table from sysfs and synthesizes
// the 8-byte RSMB header Windows would have produced, so the rest of the
// package sees one layout on every platform.
func systemFirmwareTable() ([]byte, error) {
	ep, err := os.ReadFile(sysfsEntryPoint)
	if err != nil {
		return nil, &SysError{Op: sysfsEntryPoint, Err: err}
	}
	dmi, err := os.ReadFile(sysfsDMI)
	if err != nil {
		return nil, &SysError{Op: sysfsDMI, Err: err}
	}

	major, minor := entryPointVersion(ep)
	debug.Printf("DMI table: %d bytes, SMBIOS %d.%d\n", len(dmi), major, minor)

	buf := make([]byte, 0, headerSize+len(dmi))
	buf = append(buf, 0, major, minor, 0)
	buf = encoding.AppendUint32LE(buf, uint32(len(dmi)))
	return append(buf, dmi...), nil
}

// entryPointVersion extracts the SMBIOS version from a 32-bit ("_SM_") or
// 64-bit ("_SM3_") entry point. Unknown anchors yield 0.0; the structure
// table is still usable.
func entryPointVersion(ep []byte) (major, minor byte) {
	switch {
	case len(ep) >= 9 && bytes.HasPrefix(ep, []byte("_SM3_")):
		return ep[7], ep[8]
	case len(ep) >= 8 && bytes.HasPrefix(ep, []byte("_SM_")):
		return ep[6], ep[7]
	default:
		return 0, 0
	}
}
