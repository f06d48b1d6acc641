package codec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/internal/abi"
	"github.com/wippyai/structfmt/layout"
)

// Pack encodes values into a new buffer of exactly l.Size() bytes.
func Pack(l *layout.Layout, values []any) ([]byte, error) {
	buf := make([]byte, l.Size())
	if err := packLayout(l, buf, values, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// PackInto encodes values into dst, which must be exactly l.Size() bytes.
// dst is not modified when an error is returned.
func PackInto(l *layout.Layout, dst []byte, values []any) error {
	if len(dst) != l.Size() {
		return errors.BufferSizeMismatch(errors.PhasePack, len(dst), l.Size())
	}
	scratch := getScratch(l.Size())
	defer putScratch(scratch)

	if err := packLayout(l, *scratch, values, nil); err != nil {
		return err
	}
	copy(dst, *scratch)
	return nil
}

func packLayout(l *layout.Layout, buf []byte, values []any, path []string) error {
	if len(values) != l.Slots() {
		return errors.ArityMismatch(errors.PhasePack, path, len(values), l.Slots())
	}

	order := l.ByteOrder()
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		field := buf[e.Offset:e.End()]
		if e.IsPadding() {
			clear(field)
			continue
		}
		if err := packEntry(l, e, field, order, values[e.Slot], path); err != nil {
			return err
		}
	}
	return nil
}

func packEntry(l *layout.Layout, e layout.Entry, field []byte, order binary.ByteOrder, v any, path []string) error {
	switch e.Tag {
	case format.TagBool:
		b, st := abi.Bool(v)
		if st != abi.OK {
			return coerceError(st, v, e, path)
		}
		field[0] = 0
		if b {
			field[0] = 1
		}

	case format.TagBytes:
		data, st := abi.Bytes(v)
		if st != abi.OK {
			return coerceError(st, v, e, path)
		}
		if len(data) > len(field) {
			return errors.ValueTooLarge(errors.PhasePack, slotPath(path, e.Slot), len(data), len(field))
		}
		n := copy(field, data)
		clear(field[n:])

	case format.TagNested:
		nested, ok := v.([]any)
		if !ok {
			return errors.TypeMismatch(errors.PhasePack, slotPath(path, e.Slot), abi.TypeName(v), "struct "+l.Spec().Codes[e.Code].Name)
		}
		return packLayout(e.Nested, field, nested, slotPath(path, e.Slot))

	case format.TagFloat32:
		f, st := abi.Float(v, 32)
		if st != abi.OK {
			return coerceError(st, v, e, path)
		}
		order.PutUint32(field, math.Float32bits(float32(f)))

	case format.TagFloat64:
		f, st := abi.Float(v, 64)
		if st != abi.OK {
			return coerceError(st, v, e, path)
		}
		order.PutUint64(field, math.Float64bits(f))

	default:
		bits := e.Size * 8
		var u uint64
		if e.Tag.IsSigned() {
			n, st := abi.Signed(v, bits)
			if st != abi.OK {
				return coerceError(st, v, e, path)
			}
			u = uint64(n)
		} else {
			n, st := abi.Unsigned(v, bits)
			if st != abi.OK {
				return coerceError(st, v, e, path)
			}
			u = n
		}
		putUint(order, field, u)
	}
	return nil
}

// putUint writes the low len(field) bytes of u.
func putUint(order binary.ByteOrder, field []byte, u uint64) {
	switch len(field) {
	case 1:
		field[0] = byte(u)
	case 2:
		order.PutUint16(field, uint16(u))
	case 4:
		order.PutUint32(field, uint32(u))
	case 8:
		order.PutUint64(field, u)
	}
}

func coerceError(st abi.Status, v any, e layout.Entry, path []string) error {
	p := slotPath(path, e.Slot)
	if st == abi.OutOfRange {
		return errors.ValueOutOfRange(errors.PhasePack, p, v, fieldType(e))
	}
	return errors.TypeMismatch(errors.PhasePack, p, abi.TypeName(v), fieldType(e))
}

// fieldType names the field for error messages, e.g. "long (8 bytes)".
func fieldType(e layout.Entry) string {
	switch e.Tag {
	case format.TagLong, format.TagUlong, format.TagSsize, format.TagSize:
		return e.Tag.String() + " (" + strconv.Itoa(e.Size) + " bytes)"
	case format.TagBytes:
		return strconv.Itoa(e.Size) + "s"
	}
	return e.Tag.String()
}

// slotPath returns a fresh path with "[slot]" appended.
func slotPath(path []string, slot int) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, "["+strconv.Itoa(slot)+"]")
}
