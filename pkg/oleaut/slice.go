package oleaut

import (
	"fmt"

	ole "github.com/go-ole/go-ole"
)

// Slice is a lightweight cursor into an array at a given dimension depth
// and flattened offset. A live slice holds one advisory lock on the array,
// pinning the backing store against destruction until the slice is closed.
// Slices do not own the store and must not outlive the owning array.
type Slice struct {
	h      *arrayHeader
	mode   Mode
	dim    int // leading dimensions already fixed
	start  int // flattened element offset of the slab
	span   int // elements spanned
	closed bool
}

// Dimension returns the slice's depth. The top slice has depth 0.
func (s *Slice) Dimension() int {
	return s.dim
}

// IsVector reports whether the slice is at the innermost dimension.
func (s *Slice) IsVector() bool {
	return s.h != nil && s.dim == len(s.h.bounds)-1
}

// Len returns the number of elements the slice spans.
func (s *Slice) Len() int {
	return s.span
}

// Slice descends one dimension, fixing index in the current dimension's
// bound. It fails with ErrDimension if the slice is already at the
// innermost dimension and with ErrIndex if index is outside the bound.
// The child slice holds its own lock and must be closed separately.
func (s *Slice) Slice(index int32) (*Slice, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.IsVector() {
		return nil, fmt.Errorf("%w: cannot descend below innermost dimension %d", ErrDimension, s.dim)
	}
	b := s.h.bounds[s.dim]
	if index < b.Lower || index >= b.Lower+int32(b.Count) {
		return nil, fmt.Errorf("%w: index %d outside [%d, %d)",
			ErrIndex, index, b.Lower, b.Lower+int32(b.Count))
	}
	stride := s.span / int(b.Count)
	s.h.locks.Add(1)
	return &Slice{
		h:     s.h,
		mode:  s.mode,
		dim:   s.dim + 1,
		start: s.start + int(index-b.Lower)*stride,
		span:  stride,
	}, nil
}

// ElementAt returns a borrowed view of the i-th variant element of the
// slice. Valid only when the element kind is VT_VARIANT.
func (s *Slice) ElementAt(i int) (*Variant, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.h.features&FeatureVariant == 0 {
		return nil, mismatch(ole.VT_VARIANT, s.h.vt)
	}
	if i < 0 || i >= s.span {
		return nil, fmt.Errorf("%w: element %d of %d", ErrIndex, i, s.span)
	}
	return s.h.store.variants[s.start+i].View(), nil
}

// SetElementAt deep-copies v into the i-th variant element of the slice.
// Requires a mutable handle and a VT_VARIANT element kind.
func (s *Slice) SetElementAt(i int, v *Variant) error {
	if err := s.valid(); err != nil {
		return err
	}
	if !s.mode.Mutable() {
		return fmt.Errorf("%w: cannot set element", ErrReadOnly)
	}
	if s.h.features&FeatureVariant == 0 {
		return mismatch(ole.VT_VARIANT, s.h.vt)
	}
	if i < 0 || i >= s.span {
		return fmt.Errorf("%w: element %d of %d", ErrIndex, i, s.span)
	}
	c, err := v.Clone()
	if err != nil {
		return err
	}
	old := &s.h.store.variants[s.start+i]
	if err := old.Clear(); err != nil {
		return err
	}
	c.mode = ModeOwned | ModeMutable
	*old = *c
	return nil
}

// Variants returns the slice's span of variant elements, gated on the
// VT_VARIANT element kind. A mutable handle gets a window aliasing the
// backing store; a read-only handle gets borrowed views that never
// release the stored payloads.
func (s *Slice) Variants() ([]Variant, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.h.features&FeatureVariant == 0 {
		return nil, mismatch(ole.VT_VARIANT, s.h.vt)
	}
	w := s.h.store.variants[s.start : s.start+s.span]
	if !s.mode.Mutable() {
		out := make([]Variant, len(w))
		for i := range w {
			out[i] = *w[i].View()
		}
		return out, nil
	}
	return w, nil
}

// Strings returns the slice's span of string elements, gated on the
// VT_BSTR element kind. Copy-vs-window behavior matches Variants.
func (s *Slice) Strings() ([]string, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.h.features&FeatureBSTR == 0 {
		return nil, mismatch(ole.VT_BSTR, s.h.vt)
	}
	w := s.h.store.strings[s.start : s.start+s.span]
	if !s.mode.Mutable() {
		return append([]string(nil), w...), nil
	}
	return w, nil
}

// Unknowns returns the slice's span of opaque object references, gated on
// the VT_UNKNOWN element kind.
func (s *Slice) Unknowns() ([]uintptr, error) {
	return s.refs(FeatureUnknown, ole.VT_UNKNOWN)
}

// Dispatches returns the slice's span of dispatchable object references,
// gated on the VT_DISPATCH element kind.
func (s *Slice) Dispatches() ([]uintptr, error) {
	return s.refs(FeatureDispatch, ole.VT_DISPATCH)
}

func (s *Slice) refs(want Feature, vt ole.VT) ([]uintptr, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.h.features&want == 0 {
		return nil, mismatch(vt, s.h.vt)
	}
	w := s.h.store.ptrs[s.start : s.start+s.span]
	if !s.mode.Mutable() {
		return append([]uintptr(nil), w...), nil
	}
	return w, nil
}

// Bytes returns the raw byte window of a fixed-width scalar array,
// spanning Len()*ElemSize bytes.
func (s *Slice) Bytes() ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.h.store.raw == nil {
		return nil, fmt.Errorf("%w: %s elements have no raw byte window", ErrTypeMismatch, KindName(s.h.vt))
	}
	sz := int(s.h.elemSize)
	w := s.h.store.raw[s.start*sz : (s.start+s.span)*sz]
	if !s.mode.Mutable() {
		return append([]byte(nil), w...), nil
	}
	return w, nil
}

// Close releases the slice's lock on the array. Idempotent; the backing
// store is never destroyed by a slice.
func (s *Slice) Close() error {
	if s.closed || s.h == nil {
		return nil
	}
	s.closed = true
	s.h.locks.Add(-1)
	return nil
}

func (s *Slice) valid() error {
	if s.h == nil || s.closed {
		return fmt.Errorf("%w: slice cursor", ErrDetached)
	}
	return nil
}
