package smbios

import (
	"errors"
	"fmt"
)

// Common smbios errors
var (
	ErrInvalidData = errors.New("malformed SMBIOS data")
	ErrNotFound    = errors.New("structure not found")
	ErrNoString    = errors.New("structure has no string at field")
)

// SysError wraps a failed platform call with its error code.
type SysError struct {
	Op   string // the platform call or resource
	Code uint32 // platform error code, 0 if not applicable
	Err  error
}

// Error implements the error interface
func (e *SysError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed with code 0x%08X: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying platform error.
func (e *SysError) Unwrap() error {
	return e.Err
}
