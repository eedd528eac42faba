package oleaut

// Mode describes what a value is allowed to do with its backing store.
// Only an owned value releases the store when cleared or closed; only a
// mutable value exposes write accessors. A borrowed read-only view has
// mode zero.
type Mode uint8

// Mode bits
const (
	ModeOwned Mode = 1 << iota
	ModeMutable
)

// Owned reports whether the value owns its backing store.
func (m Mode) Owned() bool {
	return m&ModeOwned != 0
}

// Mutable reports whether the value exposes write accessors.
func (m Mode) Mutable() bool {
	return m&ModeMutable != 0
}

// String returns the mode as "owned|mutable" style text.
func (m Mode) String() string {
	switch {
	case m.Owned() && m.Mutable():
		return "owned|mutable"
	case m.Owned():
		return "owned|readonly"
	case m.Mutable():
		return "borrowed|mutable"
	default:
		return "borrowed|readonly"
	}
}
