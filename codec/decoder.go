package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
)

// Unpack decodes buf, which must be exactly l.Size() bytes.
func Unpack(l *layout.Layout, buf []byte) ([]any, error) {
	if len(buf) != l.Size() {
		return nil, errors.BufferSizeMismatch(errors.PhaseUnpack, len(buf), l.Size())
	}
	return unpackLayout(l, buf), nil
}

// UnpackPrefix decodes the first l.Size() bytes of buf and ignores the rest.
func UnpackPrefix(l *layout.Layout, buf []byte) ([]any, error) {
	if len(buf) < l.Size() {
		return nil, errors.BufferSizeMismatch(errors.PhaseUnpack, len(buf), l.Size())
	}
	return unpackLayout(l, buf[:l.Size()]), nil
}

// UnpackAll decodes buf as consecutive records of l. len(buf) must be a
// multiple of l.Size().
func UnpackAll(l *layout.Layout, buf []byte) ([][]any, error) {
	size := l.Size()
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseUnpack, "cannot split a buffer into zero-size records")
	}
	if len(buf)%size != 0 {
		return nil, errors.New(errors.PhaseUnpack, errors.KindBufferSizeMismatch).
			Value(len(buf)).
			Detail("buffer is %d bytes, not a multiple of %d", len(buf), size).
			Build()
	}
	out := make([][]any, 0, len(buf)/size)
	for off := 0; off < len(buf); off += size {
		out = append(out, unpackLayout(l, buf[off:off+size]))
	}
	return out, nil
}

func unpackLayout(l *layout.Layout, buf []byte) []any {
	values := make([]any, l.Slots())
	order := l.ByteOrder()
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		if e.IsPadding() {
			continue
		}
		values[e.Slot] = decodeEntry(e, buf[e.Offset:e.End()], order)
	}
	return values
}

func decodeEntry(e layout.Entry, field []byte, order binary.ByteOrder) any {
	switch e.Tag {
	case format.TagBool:
		return field[0] != 0
	case format.TagBytes:
		return bytes.Clone(field)
	case format.TagNested:
		return unpackLayout(e.Nested, field)
	case format.TagFloat32:
		return math.Float32frombits(order.Uint32(field))
	case format.TagFloat64:
		return math.Float64frombits(order.Uint64(field))
	}

	signed := e.Tag.IsSigned()
	switch len(field) {
	case 1:
		if signed {
			return int8(field[0])
		}
		return field[0]
	case 2:
		u := order.Uint16(field)
		if signed {
			return int16(u)
		}
		return u
	case 4:
		u := order.Uint32(field)
		if signed {
			return int32(u)
		}
		return u
	default:
		u := order.Uint64(field)
		if signed {
			return int64(u)
		}
		return u
	}
}
