package oleaut

import (
	"fmt"
	"sync/atomic"

	ole "github.com/go-ole/go-ole"
)

// Feature is the safe array feature-flag bitmask. Values match the
// platform FADF_* constants; the flag describing the element kind gates
// the typed slice accessors.
type Feature uint16

// Feature flags
const (
	FeatureHaveVarType Feature = 0x0080 // FADF_HAVEVARTYPE
	FeatureBSTR        Feature = 0x0100 // FADF_BSTR
	FeatureUnknown     Feature = 0x0200 // FADF_UNKNOWN
	FeatureDispatch    Feature = 0x0400 // FADF_DISPATCH
	FeatureVariant     Feature = 0x0800 // FADF_VARIANT
)

// Bound describes one array dimension: Count elements starting at index
// Lower. Mirrors SAFEARRAYBOUND.
type Bound struct {
	Lower int32
	Count uint32
}

// maxElements caps the total element count of a single array.
const maxElements = 1 << 26

// Array is a handle to a multi-dimensional, dynamically typed array. Multiple
// handles may reference one backing store; only an owned handle destroys the
// store on Close, and only a mutable handle exposes write accessors.
type Array struct {
	h    *arrayHeader
	mode Mode
}

// arrayHeader is the shared descriptor behind every handle and slice:
// element tag, derived feature flags, per-dimension bounds, the advisory
// lock counter and the backing store.
type arrayHeader struct {
	vt       ole.VT
	features Feature
	elemSize uint32
	bounds   []Bound
	locks    atomic.Int32
	store    store
}

// store is the backing storage union. Exactly one field is non-nil,
// selected by the element kind at allocation time.
type store struct {
	variants []Variant // FeatureVariant
	strings  []string  // FeatureBSTR
	ptrs     []uintptr // FeatureUnknown / FeatureDispatch
	raw      []byte    // fixed-width scalar elements, elemSize stride
}

// scalarSize returns the element size of a fixed-width scalar kind, or 0
// if the kind is not a supported scalar.
func scalarSize(vt ole.VT) uint32 {
	switch vt {
	case ole.VT_I1, ole.VT_UI1:
		return 1
	case ole.VT_I2, ole.VT_UI2, ole.VT_BOOL:
		return 2
	case ole.VT_I4, ole.VT_UI4, ole.VT_INT, ole.VT_UINT, ole.VT_R4:
		return 4
	case ole.VT_I8, ole.VT_UI8, ole.VT_R8, ole.VT_DATE:
		return 8
	default:
		return 0
	}
}

// refSize is the stored size of object and string references.
const refSize = 8

// New allocates a fresh owned, mutable array of the given element kind and
// per-dimension bounds. Supported element kinds are VT_VARIANT, VT_BSTR,
// VT_UNKNOWN, VT_DISPATCH and the fixed-width scalar kinds.
func New(vt ole.VT, bounds []Bound) (*Array, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrAllocation)
	}
	total := uint64(1)
	for i, b := range bounds {
		if b.Count == 0 {
			return nil, fmt.Errorf("%w: dimension %d is empty", ErrAllocation, i)
		}
		total *= uint64(b.Count)
		if total > maxElements {
			return nil, fmt.Errorf("%w: more than %d elements", ErrAllocation, maxElements)
		}
	}

	h := &arrayHeader{
		vt:     vt,
		bounds: append([]Bound(nil), bounds...),
	}
	switch vt {
	case ole.VT_VARIANT:
		h.features = FeatureVariant
		h.elemSize = 24
		h.store.variants = make([]Variant, total)
		for i := range h.store.variants {
			h.store.variants[i].mode = ModeOwned | ModeMutable
		}
	case ole.VT_BSTR:
		h.features = FeatureBSTR
		h.elemSize = refSize
		h.store.strings = make([]string, total)
	case ole.VT_UNKNOWN:
		h.features = FeatureUnknown
		h.elemSize = refSize
		h.store.ptrs = make([]uintptr, total)
	case ole.VT_DISPATCH:
		h.features = FeatureDispatch
		h.elemSize = refSize
		h.store.ptrs = make([]uintptr, total)
	default:
		sz := scalarSize(vt)
		if sz == 0 {
			return nil, fmt.Errorf("%w: unsupported element kind %s", ErrAllocation, KindName(vt))
		}
		h.features = FeatureHaveVarType
		h.elemSize = sz
		h.store.raw = make([]byte, total*uint64(sz))
	}

	return &Array{h: h, mode: ModeOwned | ModeMutable}, nil
}

// Kind returns the element type tag.
func (a *Array) Kind() ole.VT {
	if a.h == nil {
		return ole.VT_EMPTY
	}
	return a.h.vt
}

// Mode returns the handle's ownership/mutability mode.
func (a *Array) Mode() Mode {
	return a.mode
}

// Dims returns the dimension count.
func (a *Array) Dims() int {
	if a.h == nil {
		return 0
	}
	return len(a.h.bounds)
}

// Bound returns the bound of one dimension. Dimension 0 is outermost.
func (a *Array) Bound(dim int) (Bound, error) {
	if a.h == nil {
		return Bound{}, fmt.Errorf("%w: array handle", ErrDetached)
	}
	if dim < 0 || dim >= len(a.h.bounds) {
		return Bound{}, fmt.Errorf("%w: dimension %d of %d", ErrDimension, dim, len(a.h.bounds))
	}
	return a.h.bounds[dim], nil
}

// ElemSize returns the element size in bytes.
func (a *Array) ElemSize() uint32 {
	if a.h == nil {
		return 0
	}
	return a.h.elemSize
}

// Features returns the feature-flag bitmask.
func (a *Array) Features() Feature {
	if a.h == nil {
		return 0
	}
	return a.h.features
}

// Locks returns the current advisory lock count: the number of live slices
// over this array's backing store.
func (a *Array) Locks() int {
	if a.h == nil {
		return 0
	}
	return int(a.h.locks.Load())
}

// Total returns the total element count across all dimensions.
func (a *Array) Total() int {
	if a.h == nil {
		return 0
	}
	return a.h.total()
}

func (h *arrayHeader) total() int {
	n := 1
	for _, b := range h.bounds {
		n *= int(b.Count)
	}
	return n
}

// View returns a borrowed read-only handle over the same backing store.
// Closing the view never destroys the store.
func (a *Array) View() *Array {
	return &Array{h: a.h}
}

// Move transfers this handle's store and mode to a new handle and detaches
// the source. Operations on the detached source fail with ErrDetached.
func (a *Array) Move() *Array {
	out := &Array{h: a.h, mode: a.mode}
	a.h = nil
	a.mode = 0
	return out
}

// Clone produces a new owned, mutable array that is a deep duplicate of the
// current contents, regardless of whether this handle owns or views them.
// Variant elements are deep-copied (nested arrays included); object
// reference elements are copied as references since the referents are
// opaque to this package.
func (a *Array) Clone() (*Array, error) {
	if a.h == nil {
		return nil, fmt.Errorf("%w: array handle", ErrDetached)
	}
	h := &arrayHeader{
		vt:       a.h.vt,
		features: a.h.features,
		elemSize: a.h.elemSize,
		bounds:   append([]Bound(nil), a.h.bounds...),
	}
	switch {
	case a.h.store.variants != nil:
		h.store.variants = make([]Variant, len(a.h.store.variants))
		for i := range a.h.store.variants {
			c, err := a.h.store.variants[i].Clone()
			if err != nil {
				return nil, fmt.Errorf("%w: element %d: %v", ErrCopy, i, err)
			}
			h.store.variants[i] = *c
		}
	case a.h.store.strings != nil:
		h.store.strings = append([]string(nil), a.h.store.strings...)
	case a.h.store.ptrs != nil:
		h.store.ptrs = append([]uintptr(nil), a.h.store.ptrs...)
	default:
		h.store.raw = append([]byte(nil), a.h.store.raw...)
	}
	return &Array{h: h, mode: ModeOwned | ModeMutable}, nil
}

// Close releases the handle. An owned handle destroys the backing store
// and fails with ErrArrayLocked while any slice over it, or over any
// owned nested array, is outstanding; the store is untouched on failure.
// A borrowed handle just detaches. Close is idempotent.
func (a *Array) Close() error {
	if a.h == nil {
		return nil
	}
	if a.mode.Owned() {
		if err := a.closable(); err != nil {
			return err
		}
		for i := range a.h.store.variants {
			if err := a.h.store.variants[i].Clear(); err != nil {
				return err
			}
		}
	}
	a.h = nil
	a.mode = 0
	return nil
}

// closable reports whether the store can be destroyed in full: no
// outstanding slices on this array or on any owned nested array.
func (a *Array) closable() error {
	if n := a.h.locks.Load(); n != 0 {
		return fmt.Errorf("%w: %d outstanding slices", ErrArrayLocked, n)
	}
	for i := range a.h.store.variants {
		v := &a.h.store.variants[i]
		if v.mode.Owned() && v.arr != nil && v.arr.h != nil {
			if err := v.arr.closable(); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopSlice returns the depth-0 slice spanning the entire array and
// increments the array's lock count. The caller must Close the slice to
// release the lock.
func (a *Array) TopSlice() (*Slice, error) {
	if a.h == nil {
		return nil, fmt.Errorf("%w: array handle", ErrDetached)
	}
	a.h.locks.Add(1)
	return &Slice{
		h:    a.h,
		mode: a.mode,
		span: a.h.total(),
	}, nil
}
