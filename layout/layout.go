package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/structfmt/format"
)

// Entry is one contiguous byte range of a layout.
type Entry struct {
	Nested   *Layout // set for TagNested
	Code     int     // index into Spec.Codes, -1 for implicit padding
	Offset   int
	Size     int
	Align    int
	Slot     int // value slot, -1 for padding
	Tag      format.Tag
	Implicit bool // inserted for alignment
}

// IsPadding reports whether the entry carries no value.
func (e Entry) IsPadding() bool {
	return e.Tag == format.TagPad
}

// End returns the offset just past the entry.
func (e Entry) End() int {
	return e.Offset + e.Size
}

// FieldInfo describes one code of the source format after layout.
type FieldInfo struct {
	Code    format.Code
	Offset  int // first byte of the code's data
	Padding int // alignment bytes inserted before Offset
	Size    int // bytes covered by all repeats
}

// Layout is the resolved byte layout of a format. It is immutable and safe
// for concurrent use.
type Layout struct {
	spec     *format.Spec
	order    binary.ByteOrder
	entries  []Entry
	fields   []FieldInfo
	platform Platform
	size     int
	align    int
	slots    int
}

func (l *Layout) Spec() *format.Spec { return l.spec }
func (l *Layout) Mode() format.Mode { return l.spec.Mode }
func (l *Layout) Platform() Platform { return l.platform }
func (l *Layout) ByteOrder() binary.ByteOrder { return l.order }

// Size is the total byte size, including trailing padding.
func (l *Layout) Size() int { return l.size }

// Align is the alignment the layout requires when embedded in a native
// struct. It is 1 for standard modes.
func (l *Layout) Align() int { return l.align }

// Slots is the number of values Pack expects and Unpack returns.
func (l *Layout) Slots() int { return l.slots }

// Format returns the source format string.
func (l *Layout) Format() string { return l.spec.Source }

func (l *Layout) NumEntries() int { return len(l.entries) }

func (l *Layout) EntryAt(i int) Entry { return l.entries[i] }

// Entries returns a copy of all entries in offset order.
func (l *Layout) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Fields returns a descriptor per source code.
func (l *Layout) Fields() []FieldInfo {
	out := make([]FieldInfo, len(l.fields))
	copy(out, l.fields)
	return out
}

func (l *Layout) String() string {
	return fmt.Sprintf("Layout(%q, %s, size=%d, align=%d, slots=%d)",
		l.spec.String(), l.spec.Mode, l.size, l.align, l.slots)
}
