package oleaut

import (
	"errors"
	"testing"
	"time"

	ole "github.com/go-ole/go-ole"
)

// TestVariantRoundTrip checks that each accessor returns the constructed
// value unchanged.
func TestVariantRoundTrip(t *testing.T) {
	if s, err := NewString("honk").Str(); err != nil || s != "honk" {
		t.Errorf("Str = %q, %v, want %q", s, err, "honk")
	}
	if v, err := NewI1(-8).I1(); err != nil || v != -8 {
		t.Errorf("I1 = %d, %v, want -8", v, err)
	}
	if v, err := NewI2(-3000).I2(); err != nil || v != -3000 {
		t.Errorf("I2 = %d, %v, want -3000", v, err)
	}
	if v, err := NewI4(-70000).I4(); err != nil || v != -70000 {
		t.Errorf("I4 = %d, %v, want -70000", v, err)
	}
	if v, err := NewI8(-1 << 40).I8(); err != nil || v != -1<<40 {
		t.Errorf("I8 = %d, %v, want %d", v, err, -1<<40)
	}
	if v, err := NewU1(200).U1(); err != nil || v != 200 {
		t.Errorf("U1 = %d, %v, want 200", v, err)
	}
	if v, err := NewU2(60000).U2(); err != nil || v != 60000 {
		t.Errorf("U2 = %d, %v, want 60000", v, err)
	}
	if v, err := NewU4(0xDEADBEEF).U4(); err != nil || v != 0xDEADBEEF {
		t.Errorf("U4 = 0x%08X, %v, want 0xDEADBEEF", v, err)
	}
	if v, err := NewU8(1 << 60).U8(); err != nil || v != 1<<60 {
		t.Errorf("U8 = %d, %v, want %d", v, err, uint64(1)<<60)
	}
	if v, err := NewR4(1.5).R4(); err != nil || v != 1.5 {
		t.Errorf("R4 = %g, %v, want 1.5", v, err)
	}
	if v, err := NewR8(-2.25).R8(); err != nil || v != -2.25 {
		t.Errorf("R8 = %g, %v, want -2.25", v, err)
	}
	if v, err := NewBool(true).Bool(); err != nil || !v {
		t.Errorf("Bool = %v, %v, want true", v, err)
	}
	when := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	if v, err := NewDate(when).Date(); err != nil || !v.Equal(when) {
		t.Errorf("Date = %v, %v, want %v", v, err, when)
	}
	if v, err := NewUnknown(0x1234).Unknown(); err != nil || v != 0x1234 {
		t.Errorf("Unknown = 0x%X, %v, want 0x1234", v, err)
	}
	if v, err := NewDispatch(0x5678).Dispatch(); err != nil || v != 0x5678 {
		t.Errorf("Dispatch = 0x%X, %v, want 0x5678", v, err)
	}
}

// TestVariantTypeMismatch checks that asking for the wrong interpretation
// fails with ErrTypeMismatch rather than returning garbage.
func TestVariantTypeMismatch(t *testing.T) {
	v := NewI4(42)

	if _, err := v.Str(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Str on VT_I4: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := v.Bool(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Bool on VT_I4: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := v.U4(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("U4 on VT_I4: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := v.I8(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("I8 on VT_I4: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := v.Array(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Array on VT_I4: err = %v, want ErrTypeMismatch", err)
	}

	if _, err := NewString("x").I4(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("I4 on VT_BSTR: err = %v, want ErrTypeMismatch", err)
	}
}

// TestVariant32BitAliasing checks the documented VT_I4/VT_INT and
// VT_UI4/VT_UINT tag equivalence in the 32-bit accessors.
func TestVariant32BitAliasing(t *testing.T) {
	i := NewInt(-5)
	if i.Kind() != ole.VT_INT {
		t.Fatalf("NewInt kind = %s, want VT_INT", KindName(i.Kind()))
	}
	if v, err := i.I4(); err != nil || v != -5 {
		t.Errorf("I4 on VT_INT = %d, %v, want -5", v, err)
	}

	u := NewUint(7)
	if u.Kind() != ole.VT_UINT {
		t.Fatalf("NewUint kind = %s, want VT_UINT", KindName(u.Kind()))
	}
	if v, err := u.U4(); err != nil || v != 7 {
		t.Errorf("U4 on VT_UINT = %d, %v, want 7", v, err)
	}

	// The aliasing is not symmetric across signedness
	if _, err := i.U4(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("U4 on VT_INT: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := u.I4(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("I4 on VT_UINT: err = %v, want ErrTypeMismatch", err)
	}
}

// TestVariantMove checks that Move transfers the payload and resets the
// source to VT_EMPTY.
func TestVariantMove(t *testing.T) {
	src := NewString("payload")
	dst := src.Move()

	if !src.IsEmpty() {
		t.Errorf("source kind after Move = %s, want VT_EMPTY", KindName(src.Kind()))
	}
	if s, err := dst.Str(); err != nil || s != "payload" {
		t.Errorf("moved Str = %q, %v, want %q", s, err, "payload")
	}
	if !dst.Mode().Owned() || !dst.Mode().Mutable() {
		t.Errorf("moved mode = %s, want owned|mutable", dst.Mode())
	}
}

// TestVariantViewReadOnly checks that a view rejects mutation and never
// owns the payload.
func TestVariantViewReadOnly(t *testing.T) {
	v := NewI4(1)
	view := v.View()

	if view.Mode().Owned() || view.Mode().Mutable() {
		t.Fatalf("view mode = %s, want borrowed|readonly", view.Mode())
	}
	if err := view.SetI4(2); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetI4 on view: err = %v, want ErrReadOnly", err)
	}
	if got, err := v.I4(); err != nil || got != 1 {
		t.Errorf("original after view set attempt = %d, %v, want 1", got, err)
	}
}

// TestVariantSetRetags checks that setters retag and replace the payload.
func TestVariantSetRetags(t *testing.T) {
	v := NewString("old")
	if err := v.SetU2(9); err != nil {
		t.Fatalf("SetU2: %v", err)
	}
	if v.Kind() != ole.VT_UI2 {
		t.Errorf("kind after SetU2 = %s, want VT_UI2", KindName(v.Kind()))
	}
	if _, err := v.Str(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Str after retag: err = %v, want ErrTypeMismatch", err)
	}
	if got, err := v.U2(); err != nil || got != 9 {
		t.Errorf("U2 after SetU2 = %d, %v, want 9", got, err)
	}
}

// TestVariantCloneDeep checks that Clone duplicates a nested array instead
// of sharing it.
func TestVariantCloneDeep(t *testing.T) {
	arr, err := New(ole.VT_BSTR, []Bound{{Count: 2}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	top, err := arr.TopSlice()
	if err != nil {
		t.Fatalf("TopSlice: %v", err)
	}
	ss, err := top.Strings()
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	ss[0] = "original"
	if err := top.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v, err := NewArrayVariant(arr)
	if err != nil {
		t.Fatalf("NewArrayVariant: %v", err)
	}
	c, err := v.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	// Mutate the source; the clone must not see it.
	top, _ = arr.TopSlice()
	ss, _ = top.Strings()
	ss[0] = "changed"
	top.Close()

	ca, err := c.Array()
	if err != nil {
		t.Fatalf("Array on clone: %v", err)
	}
	ctop, _ := ca.TopSlice()
	defer ctop.Close()
	cs, err := ctop.Strings()
	if err != nil {
		t.Fatalf("clone Strings: %v", err)
	}
	if cs[0] != "original" {
		t.Errorf("clone element = %q, want %q", cs[0], "original")
	}
}

// TestVariantClearLockedArray checks that clearing an owned variant fails
// while slices over its nested array are outstanding, and succeeds once
// they are released.
func TestVariantClearLockedArray(t *testing.T) {
	arr, err := New(ole.VT_VARIANT, []Bound{{Count: 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := NewArrayVariant(arr)
	if err != nil {
		t.Fatalf("NewArrayVariant: %v", err)
	}

	s, err := arr.TopSlice()
	if err != nil {
		t.Fatalf("TopSlice: %v", err)
	}
	if err := v.Clear(); !errors.Is(err, ErrArrayLocked) {
		t.Errorf("Clear with live slice: err = %v, want ErrArrayLocked", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("slice Close: %v", err)
	}
	if err := v.Clear(); err != nil {
		t.Errorf("Clear after release: %v", err)
	}
	if !v.IsEmpty() {
		t.Errorf("kind after Clear = %s, want VT_EMPTY", KindName(v.Kind()))
	}
}

// TestDateSerialConversion checks the OLE DATE serial conversions against
// known serial numbers.
func TestDateSerialConversion(t *testing.T) {
	tests := []struct {
		serial float64
		want   time.Time
	}{
		{0, time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{25569, time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{43831.5, time.Date(2020, time.January, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := DateFromOLE(tt.serial); !got.Equal(tt.want) {
			t.Errorf("DateFromOLE(%v) = %v, want %v", tt.serial, got, tt.want)
		}
		if got := OLEFromDate(tt.want); got != tt.serial {
			t.Errorf("OLEFromDate(%v) = %v, want %v", tt.want, got, tt.serial)
		}
	}
}

// TestBSTRWireRoundTrip checks the BSTR length-prefixed wire layout.
func TestBSTRWireRoundTrip(t *testing.T) {
	for _, s := range []string{"", "Hi", "winraw", "é世"} {
		b := EncodeBSTR(s)
		got, err := DecodeBSTR(b)
		if err != nil {
			t.Fatalf("DecodeBSTR(%q bytes): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip = %q, want %q", got, s)
		}
	}

	// "Hi": length 4, 'H' 'i' in UTF-16LE, two-byte terminator
	want := []byte{0x04, 0x00, 0x00, 0x00, 'H', 0x00, 'i', 0x00, 0x00, 0x00}
	got := EncodeBSTR("Hi")
	if len(got) != len(want) {
		t.Fatalf("EncodeBSTR(\"Hi\") = % X, want % X", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EncodeBSTR(\"Hi\") = % X, want % X", got, want)
		}
	}

	if _, err := DecodeBSTR([]byte{0x04, 0x00, 0x00, 0x00, 'H'}); err == nil {
		t.Error("DecodeBSTR on truncated buffer succeeded, want error")
	}
}
