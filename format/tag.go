package format

// Tag identifies the primitive type of a code.
type Tag uint8

const (
	TagPad Tag = iota
	TagBool
	TagInt8
	TagUint8
	TagInt16
	TagUint16
	TagInt32
	TagUint32
	TagLong
	TagUlong
	TagInt64
	TagUint64
	TagSsize
	TagSize
	TagFloat32
	TagFloat64
	TagBytes
	TagNested
)

var tagNames = [...]string{
	TagPad:     "pad",
	TagBool:    "bool",
	TagInt8:    "int8",
	TagUint8:   "uint8",
	TagInt16:   "int16",
	TagUint16:  "uint16",
	TagInt32:   "int32",
	TagUint32:  "uint32",
	TagLong:    "long",
	TagUlong:   "ulong",
	TagInt64:   "int64",
	TagUint64:  "uint64",
	TagSsize:   "ssize",
	TagSize:    "size",
	TagFloat32: "float32",
	TagFloat64: "float64",
	TagBytes:   "bytes",
	TagNested:  "nested",
}

const tagChars = "x?bBhHiIlLqQnNfds"

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Char returns the format character of t, or 0 for TagNested.
func (t Tag) Char() byte {
	if t < TagNested {
		return tagChars[t]
	}
	return 0
}

// TagFor maps a format character to its tag. Case selects signedness.
func TagFor(c byte) (Tag, bool) {
	switch c {
	case 'x':
		return TagPad, true
	case '?':
		return TagBool, true
	case 'b':
		return TagInt8, true
	case 'B':
		return TagUint8, true
	case 'h':
		return TagInt16, true
	case 'H':
		return TagUint16, true
	case 'i':
		return TagInt32, true
	case 'I':
		return TagUint32, true
	case 'l':
		return TagLong, true
	case 'L':
		return TagUlong, true
	case 'q':
		return TagInt64, true
	case 'Q':
		return TagUint64, true
	case 'n':
		return TagSsize, true
	case 'N':
		return TagSize, true
	case 'f':
		return TagFloat32, true
	case 'd':
		return TagFloat64, true
	case 's':
		return TagBytes, true
	}
	return 0, false
}

func (t Tag) IsSigned() bool {
	switch t {
	case TagInt8, TagInt16, TagInt32, TagLong, TagInt64, TagSsize:
		return true
	}
	return false
}

func (t Tag) IsUnsigned() bool {
	switch t {
	case TagUint8, TagUint16, TagUint32, TagUlong, TagUint64, TagSize:
		return true
	}
	return false
}

func (t Tag) IsInteger() bool {
	return t.IsSigned() || t.IsUnsigned()
}

func (t Tag) IsFloat() bool {
	return t == TagFloat32 || t == TagFloat64
}

// NativeOnly reports whether t has no standard size and is rejected
// outside native mode.
func (t Tag) NativeOnly() bool {
	return t == TagSsize || t == TagSize
}

// HasSlot reports whether a code of this tag consumes values.
func (t Tag) HasSlot() bool {
	return t != TagPad
}

// StandardSize returns the element size under the standard modes.
// It is 0 for native-only and nested tags.
func (t Tag) StandardSize() int {
	switch t {
	case TagPad, TagBool, TagInt8, TagUint8, TagBytes:
		return 1
	case TagInt16, TagUint16:
		return 2
	case TagInt32, TagUint32, TagLong, TagUlong, TagFloat32:
		return 4
	case TagInt64, TagUint64, TagFloat64:
		return 8
	}
	return 0
}
