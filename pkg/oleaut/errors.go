package oleaut

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"
)

// Common oleaut errors
var (
	ErrAllocation   = errors.New("array allocation failed")
	ErrCopy         = errors.New("deep copy failed")
	ErrTypeMismatch = errors.New("type tag mismatch")
	ErrDimension    = errors.New("dimension out of range")
	ErrIndex        = errors.New("index out of bounds")
	ErrArrayLocked  = errors.New("array is locked")
	ErrReadOnly     = errors.New("value is read-only")
	ErrDetached     = errors.New("value is detached")
)

// KindName returns a human-readable name for a type tag. Array tags are
// reported as VT_ARRAY|<element>.
func KindName(vt ole.VT) string {
	if vt&ole.VT_ARRAY != 0 {
		return "VT_ARRAY|" + KindName(vt &^ ole.VT_ARRAY)
	}
	switch vt {
	case ole.VT_EMPTY:
		return "VT_EMPTY"
	case ole.VT_I1:
		return "VT_I1"
	case ole.VT_I2:
		return "VT_I2"
	case ole.VT_I4:
		return "VT_I4"
	case ole.VT_INT:
		return "VT_INT"
	case ole.VT_I8:
		return "VT_I8"
	case ole.VT_UI1:
		return "VT_UI1"
	case ole.VT_UI2:
		return "VT_UI2"
	case ole.VT_UI4:
		return "VT_UI4"
	case ole.VT_UINT:
		return "VT_UINT"
	case ole.VT_UI8:
		return "VT_UI8"
	case ole.VT_R4:
		return "VT_R4"
	case ole.VT_R8:
		return "VT_R8"
	case ole.VT_BOOL:
		return "VT_BOOL"
	case ole.VT_DATE:
		return "VT_DATE"
	case ole.VT_BSTR:
		return "VT_BSTR"
	case ole.VT_UNKNOWN:
		return "VT_UNKNOWN"
	case ole.VT_DISPATCH:
		return "VT_DISPATCH"
	case ole.VT_VARIANT:
		return "VT_VARIANT"
	default:
		return fmt.Sprintf("VT(0x%04X)", uint16(vt))
	}
}

// mismatch builds a TypeMismatch error with the expected and actual tags.
func mismatch(want, got ole.VT) error {
	return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, KindName(got), KindName(want))
}
