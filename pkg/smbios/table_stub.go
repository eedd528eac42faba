//go:build !windows && !linux

package smbios

import "errors"

// systemFirmwareTable has no implementation on this platform; use
// FromBytes with a caller-supplied dump instead.
func systemFirmwareTable() ([]byte, error) {
	return nil, &SysError{
		Op:  "firmware table query",
		Err: errors.ErrUnsupported,
	}
}
