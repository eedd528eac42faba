//go:build windows

package smbios

import (
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hwprobe/winraw/pkg/debug"
)

// firmwareTableProviderRSMB is 'RSMB' in ASCII: the raw SMBIOS provider.
const firmwareTableProviderRSMB = 0x52534D42

var (
	kernel32                   = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemFirmwareTable = kernel32.NewProc("GetSystemFirmwareTable")
)

// systemFirmwareTable retrieves the raw RSMB buffer, header included.
// GetSystemFirmwareTable is called twice: once for the size, once for the
// data.
func systemFirmwareTable() ([]byte, error) {
	r1, _, callErr := procGetSystemFirmwareTable.Call(
		uintptr(firmwareTableProviderRSMB), 0, 0, 0)
	if r1 == 0 {
		return nil, &SysError{
			Op:   "GetSystemFirmwareTable",
			Code: errnoCode(callErr),
			Err:  callErr,
		}
	}

	buf := make([]byte, uint32(r1))
	r2, _, callErr := procGetSystemFirmwareTable.Call(
		uintptr(firmwareTableProviderRSMB), 0,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if uint32(r2) == 0 || uint32(r2) > uint32(len(buf)) {
		return nil, &SysError{
			Op:   "GetSystemFirmwareTable",
			Code: errnoCode(callErr),
			Err:  callErr,
		}
	}
	debug.Printf("RSMB firmware table: %d bytes\n", uint32(r2))
	return buf[:uint32(r2)], nil
}

func errnoCode(err error) uint32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return 0
}
