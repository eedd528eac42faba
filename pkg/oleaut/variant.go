// Package oleaut implements the OLE automation value model: type-tagged
// variant values and multi-dimensional safe arrays with lock-counted slice
// cursors. Type tags are the standard VT codes from go-ole, so a value's
// tag is numerically identical to the platform VARTYPE. The package is pure
// Go and does not require a Windows host.
package oleaut

import (
	"fmt"
	"math"
	"time"

	ole "github.com/go-ole/go-ole"
)

// Variant is a discriminated union carrying a VT type tag and one payload.
// The zero value is a borrowed read-only VT_EMPTY; use the constructors to
// create owned values.
//
// Ownership follows the Mode contract: an owned variant releases a nested
// array when cleared, a borrowed view never does. Every accessor checks the
// tag before interpreting the payload and returns ErrTypeMismatch when the
// requested interpretation does not match.
type Variant struct {
	vt   ole.VT
	mode Mode

	// Payload. Scalars live in num (floats as IEEE-754 bits, bools as 0/1,
	// object references as uintptr); strings, dates and arrays have their
	// own fields.
	num  uint64
	str  string
	date time.Time
	arr  *Array
}

// NewString creates an owned VT_BSTR variant.
func NewString(s string) *Variant {
	return &Variant{vt: ole.VT_BSTR, mode: ModeOwned | ModeMutable, str: s}
}

// NewI1 creates an owned VT_I1 variant.
func NewI1(v int8) *Variant {
	return &Variant{vt: ole.VT_I1, mode: ModeOwned | ModeMutable, num: uint64(uint8(v))}
}

// NewI2 creates an owned VT_I2 variant.
func NewI2(v int16) *Variant {
	return &Variant{vt: ole.VT_I2, mode: ModeOwned | ModeMutable, num: uint64(uint16(v))}
}

// NewI4 creates an owned VT_I4 variant.
func NewI4(v int32) *Variant {
	return &Variant{vt: ole.VT_I4, mode: ModeOwned | ModeMutable, num: uint64(uint32(v))}
}

// NewInt creates an owned VT_INT variant. VT_INT is the platform-width
// integer tag; it is representationally identical to VT_I4 and the I4
// accessor reads both.
func NewInt(v int32) *Variant {
	return &Variant{vt: ole.VT_INT, mode: ModeOwned | ModeMutable, num: uint64(uint32(v))}
}

// NewUint creates an owned VT_UINT variant, the unsigned counterpart of
// NewInt. The U4 accessor reads both VT_UINT and VT_UI4.
func NewUint(v uint32) *Variant {
	return &Variant{vt: ole.VT_UINT, mode: ModeOwned | ModeMutable, num: uint64(v)}
}

// NewI8 creates an owned VT_I8 variant.
func NewI8(v int64) *Variant {
	return &Variant{vt: ole.VT_I8, mode: ModeOwned | ModeMutable, num: uint64(v)}
}

// NewU1 creates an owned VT_UI1 variant.
func NewU1(v uint8) *Variant {
	return &Variant{vt: ole.VT_UI1, mode: ModeOwned | ModeMutable, num: uint64(v)}
}

// NewU2 creates an owned VT_UI2 variant.
func NewU2(v uint16) *Variant {
	return &Variant{vt: ole.VT_UI2, mode: ModeOwned | ModeMutable, num: uint64(v)}
}

// NewU4 creates an owned VT_UI4 variant.
func NewU4(v uint32) *Variant {
	return &Variant{vt: ole.VT_UI4, mode: ModeOwned | ModeMutable, num: uint64(v)}
}

// NewU8 creates an owned VT_UI8 variant.
func NewU8(v uint64) *Variant {
	return &Variant{vt: ole.VT_UI8, mode: ModeOwned | ModeMutable, num: v}
}

// NewR4 creates an owned VT_R4 variant.
func NewR4(v float32) *Variant {
	return &Variant{vt: ole.VT_R4, mode: ModeOwned | ModeMutable, num: uint64(math.Float32bits(v))}
}

// NewR8 creates an owned VT_R8 variant.
func NewR8(v float64) *Variant {
	return &Variant{vt: ole.VT_R8, mode: ModeOwned | ModeMutable, num: math.Float64bits(v)}
}

// NewBool creates an owned VT_BOOL variant.
func NewBool(v bool) *Variant {
	var n uint64
	if v {
		n = 1
	}
	return &Variant{vt: ole.VT_BOOL, mode: ModeOwned | ModeMutable, num: n}
}

// NewDate creates an owned VT_DATE variant.
func NewDate(t time.Time) *Variant {
	return &Variant{vt: ole.VT_DATE, mode: ModeOwned | ModeMutable, date: t}
}

// NewUnknown creates an owned VT_UNKNOWN variant holding an opaque object
// reference. The reference is not dereferenced by this package.
func NewUnknown(ref uintptr) *Variant {
	return &Variant{vt: ole.VT_UNKNOWN, mode: ModeOwned | ModeMutable, num: uint64(ref)}
}

// NewDispatch creates an owned VT_DISPATCH variant holding an opaque
// dispatchable object reference.
func NewDispatch(ref uintptr) *Variant {
	return &Variant{vt: ole.VT_DISPATCH, mode: ModeOwned | ModeMutable, num: uint64(ref)}
}

// NewArrayVariant creates a variant tagged VT_ARRAY|<element kind> that
// adopts the given array. The array keeps its own mode: the variant only
// releases it on Clear if the array is owned.
func NewArrayVariant(a *Array) (*Variant, error) {
	if a == nil || a.h == nil {
		return nil, fmt.Errorf("%w: nil array", ErrDetached)
	}
	return &Variant{
		vt:   ole.VT_ARRAY | a.h.vt,
		mode: ModeOwned | ModeMutable,
		arr:  a,
	}, nil
}

// Kind returns the variant's type tag.
func (v *Variant) Kind() ole.VT {
	return v.vt
}

// Mode returns the variant's ownership/mutability mode.
func (v *Variant) Mode() Mode {
	return v.mode
}

// IsEmpty reports whether the variant is VT_EMPTY.
func (v *Variant) IsEmpty() bool {
	return v.vt == ole.VT_EMPTY
}

// Str returns the VT_BSTR payload.
func (v *Variant) Str() (string, error) {
	if v.vt != ole.VT_BSTR {
		return "", mismatch(ole.VT_BSTR, v.vt)
	}
	return v.str, nil
}

// I1 returns the VT_I1 payload.
func (v *Variant) I1() (int8, error) {
	if v.vt != ole.VT_I1 {
		return 0, mismatch(ole.VT_I1, v.vt)
	}
	return int8(uint8(v.num)), nil
}

// I2 returns the VT_I2 payload.
func (v *Variant) I2() (int16, error) {
	if v.vt != ole.VT_I2 {
		return 0, mismatch(ole.VT_I2, v.vt)
	}
	return int16(uint16(v.num)), nil
}

// I4 returns the 32-bit signed payload. VT_INT is accepted as an alias of
// VT_I4: the two tags have identical representation on every supported
// platform and existing producers use them interchangeably.
func (v *Variant) I4() (int32, error) {
	if v.vt != ole.VT_I4 && v.vt != ole.VT_INT {
		return 0, mismatch(ole.VT_I4, v.vt)
	}
	return int32(uint32(v.num)), nil
}

// I8 returns the VT_I8 payload.
func (v *Variant) I8() (int64, error) {
	if v.vt != ole.VT_I8 {
		return 0, mismatch(ole.VT_I8, v.vt)
	}
	return int64(v.num), nil
}

// U1 returns the VT_UI1 payload.
func (v *Variant) U1() (uint8, error) {
	if v.vt != ole.VT_UI1 {
		return 0, mismatch(ole.VT_UI1, v.vt)
	}
	return uint8(v.num), nil
}

// U2 returns the VT_UI2 payload.
func (v *Variant) U2() (uint16, error) {
	if v.vt != ole.VT_UI2 {
		return 0, mismatch(ole.VT_UI2, v.vt)
	}
	return uint16(v.num), nil
}

// U4 returns the 32-bit unsigned payload. VT_UINT is accepted as an alias
// of VT_UI4, mirroring I4/INT.
func (v *Variant) U4() (uint32, error) {
	if v.vt != ole.VT_UI4 && v.vt != ole.VT_UINT {
		return 0, mismatch(ole.VT_UI4, v.vt)
	}
	return uint32(v.num), nil
}

// U8 returns the VT_UI8 payload.
func (v *Variant) U8() (uint64, error) {
	if v.vt != ole.VT_UI8 {
		return 0, mismatch(ole.VT_UI8, v.vt)
	}
	return v.num, nil
}

// R4 returns the VT_R4 payload.
func (v *Variant) R4() (float32, error) {
	if v.vt != ole.VT_R4 {
		return 0, mismatch(ole.VT_R4, v.vt)
	}
	return math.Float32frombits(uint32(v.num)), nil
}

// R8 returns the VT_R8 payload.
func (v *Variant) R8() (float64, error) {
	if v.vt != ole.VT_R8 {
		return 0, mismatch(ole.VT_R8, v.vt)
	}
	return math.Float64frombits(v.num), nil
}

// Bool returns the VT_BOOL payload.
func (v *Variant) Bool() (bool, error) {
	if v.vt != ole.VT_BOOL {
		return false, mismatch(ole.VT_BOOL, v.vt)
	}
	return v.num != 0, nil
}

// Date returns the VT_DATE payload.
func (v *Variant) Date() (time.Time, error) {
	if v.vt != ole.VT_DATE {
		return time.Time{}, mismatch(ole.VT_DATE, v.vt)
	}
	return v.date, nil
}

// Unknown returns the VT_UNKNOWN payload.
func (v *Variant) Unknown() (uintptr, error) {
	if v.vt != ole.VT_UNKNOWN {
		return 0, mismatch(ole.VT_UNKNOWN, v.vt)
	}
	return uintptr(v.num), nil
}

// Dispatch returns the VT_DISPATCH payload.
func (v *Variant) Dispatch() (uintptr, error) {
	if v.vt != ole.VT_DISPATCH {
		return 0, mismatch(ole.VT_DISPATCH, v.vt)
	}
	return uintptr(v.num), nil
}

// Array returns a borrowed view over the nested array payload. Valid only
// for VT_ARRAY-tagged variants.
func (v *Variant) Array() (*Array, error) {
	if v.vt&ole.VT_ARRAY == 0 || v.arr == nil {
		return nil, mismatch(ole.VT_ARRAY, v.vt)
	}
	return v.arr.View(), nil
}

// SetString retags the variant as VT_BSTR and replaces the payload.
func (v *Variant) SetString(s string) error {
	if err := v.precheckSet(ole.VT_BSTR); err != nil {
		return err
	}
	v.str = s
	return nil
}

// SetI1 retags the variant as VT_I1 and replaces the payload.
func (v *Variant) SetI1(x int8) error {
	if err := v.precheckSet(ole.VT_I1); err != nil {
		return err
	}
	v.num = uint64(uint8(x))
	return nil
}

// SetI2 retags the variant as VT_I2 and replaces the payload.
func (v *Variant) SetI2(x int16) error {
	if err := v.precheckSet(ole.VT_I2); err != nil {
		return err
	}
	v.num = uint64(uint16(x))
	return nil
}

// SetI4 retags the variant as VT_I4 and replaces the payload.
func (v *Variant) SetI4(x int32) error {
	if err := v.precheckSet(ole.VT_I4); err != nil {
		return err
	}
	v.num = uint64(uint32(x))
	return nil
}

// SetI8 retags the variant as VT_I8 and replaces the payload.
func (v *Variant) SetI8(x int64) error {
	if err := v.precheckSet(ole.VT_I8); err != nil {
		return err
	}
	v.num = uint64(x)
	return nil
}

// SetU1 retags the variant as VT_UI1 and replaces the payload.
func (v *Variant) SetU1(x uint8) error {
	if err := v.precheckSet(ole.VT_UI1); err != nil {
		return err
	}
	v.num = uint64(x)
	return nil
}

// SetU2 retags the variant as VT_UI2 and replaces the payload.
func (v *Variant) SetU2(x uint16) error {
	if err := v.precheckSet(ole.VT_UI2); err != nil {
		return err
	}
	v.num = uint64(x)
	return nil
}

// SetU4 retags the variant as VT_UI4 and replaces the payload.
func (v *Variant) SetU4(x uint32) error {
	if err := v.precheckSet(ole.VT_UI4); err != nil {
		return err
	}
	v.num = uint64(x)
	return nil
}

// SetU8 retags the variant as VT_UI8 and replaces the payload.
func (v *Variant) SetU8(x uint64) error {
	if err := v.precheckSet(ole.VT_UI8); err != nil {
		return err
	}
	v.num = x
	return nil
}

// SetR4 retags the variant as VT_R4 and replaces the payload.
func (v *Variant) SetR4(x float32) error {
	if err := v.precheckSet(ole.VT_R4); err != nil {
		return err
	}
	v.num = uint64(math.Float32bits(x))
	return nil
}

// SetR8 retags the variant as VT_R8 and replaces the payload.
func (v *Variant) SetR8(x float64) error {
	if err := v.precheckSet(ole.VT_R8); err != nil {
		return err
	}
	v.num = math.Float64bits(x)
	return nil
}

// SetBool retags the variant as VT_BOOL and replaces the payload.
func (v *Variant) SetBool(x bool) error {
	if err := v.precheckSet(ole.VT_BOOL); err != nil {
		return err
	}
	if x {
		v.num = 1
	}
	return nil
}

// SetDate retags the variant as VT_DATE and replaces the payload.
func (v *Variant) SetDate(t time.Time) error {
	if err := v.precheckSet(ole.VT_DATE); err != nil {
		return err
	}
	v.date = t
	return nil
}

// precheckSet enforces mutability, releases the previous payload and
// retags the variant.
func (v *Variant) precheckSet(vt ole.VT) error {
	if !v.mode.Mutable() {
		return fmt.Errorf("%w: cannot set %s", ErrReadOnly, KindName(vt))
	}
	if err := v.Clear(); err != nil {
		return err
	}
	v.vt = vt
	return nil
}

// Clone produces a new owned variant that is a deep duplicate of the
// current payload; a nested array is deep-copied regardless of whether
// this variant owns or views it.
func (v *Variant) Clone() (*Variant, error) {
	out := &Variant{
		vt:   v.vt,
		mode: ModeOwned | ModeMutable,
		num:  v.num,
		str:  v.str,
		date: v.date,
	}
	if v.arr != nil {
		a, err := v.arr.Clone()
		if err != nil {
			return nil, fmt.Errorf("%w: nested array: %v", ErrCopy, err)
		}
		out.arr = a
	}
	return out, nil
}

// View returns a borrowed read-only alias of the variant. The view never
// releases the payload; a nested array is shared, not copied.
func (v *Variant) View() *Variant {
	out := *v
	out.mode = 0
	return &out
}

// Move transfers the payload to a new owned variant and resets the source
// to VT_EMPTY.
func (v *Variant) Move() *Variant {
	out := &Variant{
		vt:   v.vt,
		mode: ModeOwned | ModeMutable,
		num:  v.num,
		str:  v.str,
		date: v.date,
		arr:  v.arr,
	}
	keep := v.mode
	*v = Variant{mode: keep}
	return out
}

// Clear releases the payload and resets the variant to VT_EMPTY. Only an
// owned variant destroys a nested owned array; a borrowed view just
// detaches from the payload. Clear fails if a nested array cannot be
// destroyed because slices of it are still outstanding.
func (v *Variant) Clear() error {
	if v.mode.Owned() && v.arr != nil {
		if err := v.arr.Close(); err != nil {
			return err
		}
	}
	keep := v.mode
	*v = Variant{mode: keep}
	return nil
}
