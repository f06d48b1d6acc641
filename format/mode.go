package format

import "encoding/binary"

// Mode is the byte-order modifier of a format.
type Mode uint8

const (
	// ModeNative uses platform sizes, alignment and byte order ('@' or none).
	ModeNative Mode = iota
	// ModeNativeStandard uses platform byte order with standard sizes ('=').
	ModeNativeStandard
	ModeLittleEndian
	ModeBigEndian
	// ModeNetwork is big-endian ('!').
	ModeNetwork
)

// ModeFor maps a modifier character to its mode.
func ModeFor(c byte) (Mode, bool) {
	switch c {
	case '@':
		return ModeNative, true
	case '=':
		return ModeNativeStandard, true
	case '<':
		return ModeLittleEndian, true
	case '>':
		return ModeBigEndian, true
	case '!':
		return ModeNetwork, true
	}
	return 0, false
}

func (m Mode) Char() byte {
	switch m {
	case ModeNativeStandard:
		return '='
	case ModeLittleEndian:
		return '<'
	case ModeBigEndian:
		return '>'
	case ModeNetwork:
		return '!'
	}
	return '@'
}

func (m Mode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModeNativeStandard:
		return "native-standard"
	case ModeLittleEndian:
		return "little-endian"
	case ModeBigEndian:
		return "big-endian"
	case ModeNetwork:
		return "network"
	}
	return "unknown"
}

// NativeSizes reports whether primitive sizes follow the platform C ABI.
func (m Mode) NativeSizes() bool {
	return m == ModeNative
}

// Aligned reports whether fields are padded to their natural alignment.
func (m Mode) Aligned() bool {
	return m == ModeNative
}

// ByteOrder resolves the mode's byte order given the platform order.
func (m Mode) ByteOrder(native binary.ByteOrder) binary.ByteOrder {
	switch m {
	case ModeLittleEndian:
		return binary.LittleEndian
	case ModeBigEndian, ModeNetwork:
		return binary.BigEndian
	}
	return native
}
