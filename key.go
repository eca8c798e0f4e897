package dirshell

// RawKey identifies a non-printable key
type RawKey uint8

const (
	// NoRawKey marks a Key that carries a byte
	NoRawKey RawKey = iota
	RawBackspace
	RawArrowUp
	RawArrowDown
	RawArrowLeft
	RawArrowRight
	RawEscape
)

// Key is a single decoded key event: either a byte or a raw key
type Key struct {
	Byte byte
	Raw  RawKey
}

// ByteKey returns the Key for a typed byte
func ByteKey(c byte) Key {
	return Key{Byte: c}
}

// RawKeyOf returns the Key for a non-printable key
func RawKeyOf(rk RawKey) Key {
	return Key{Raw: rk}
}

// IsRaw reports whether the key is a non-printable key
func (k Key) IsRaw() bool {
	return k.Raw != NoRawKey
}

// KeysOf converts s into byte keys, in order
func KeysOf(s string) []Key {
	keys := make([]Key, 0, len(s))
	for i := 0; i < len(s); i++ {
		keys = append(keys, ByteKey(s[i]))
	}
	return keys
}
