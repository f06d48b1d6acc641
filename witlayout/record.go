package witlayout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
)

// MaxTupleLen bounds the tuple<u8, ...> emitted for one byte array.
const MaxTupleLen = 1024

// Record converts l into a WIT record named after name in kebab-case.
// Value slots become fields f0, f1, ...; explicit pad runs become pad0,
// pad1, ... Nested structs become records named after the referenced
// struct and are shared between repeats.
func Record(name string, l *layout.Layout) (*wit.TypeDef, error) {
	b := builder{records: make(map[*layout.Layout]*wit.TypeDef)}
	return b.record(KebabCase(name), l, nil)
}

type builder struct {
	records map[*layout.Layout]*wit.TypeDef
}

func (b *builder) record(name string, l *layout.Layout, path []string) (*wit.TypeDef, error) {
	if td, ok := b.records[l]; ok {
		return td, nil
	}

	var fields []wit.Field
	pads := 0
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		switch {
		case e.Implicit:
			continue
		case e.IsPadding():
			t, err := byteTuple(e.Size, path)
			if err != nil {
				return nil, err
			}
			fields = append(fields, wit.Field{Name: "pad" + strconv.Itoa(pads), Type: t})
			pads++
		default:
			t, err := b.fieldType(l, e, append(path, "f"+strconv.Itoa(e.Slot)))
			if err != nil {
				return nil, err
			}
			fields = append(fields, wit.Field{Name: "f" + strconv.Itoa(e.Slot), Type: t})
		}
	}
	if len(fields) == 0 {
		return nil, errors.Incompatible(path, fmt.Sprintf("%q has no fields; WIT records cannot be empty", l.Format()))
	}

	td := &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: fields},
	}
	b.records[l] = td
	return td, nil
}

func (b *builder) fieldType(l *layout.Layout, e layout.Entry, path []string) (wit.Type, error) {
	switch e.Tag {
	case format.TagBool:
		return wit.Bool{}, nil
	case format.TagFloat32:
		return wit.F32{}, nil
	case format.TagFloat64:
		return wit.F64{}, nil
	case format.TagBytes:
		return byteTuple(e.Size, path)
	case format.TagNested:
		return b.record(KebabCase(l.Spec().Codes[e.Code].Name), e.Nested, path)
	}

	signed := e.Tag.IsSigned()
	switch e.Size {
	case 1:
		if signed {
			return wit.S8{}, nil
		}
		return wit.U8{}, nil
	case 2:
		if signed {
			return wit.S16{}, nil
		}
		return wit.U16{}, nil
	case 4:
		if signed {
			return wit.S32{}, nil
		}
		return wit.U32{}, nil
	case 8:
		if signed {
			return wit.S64{}, nil
		}
		return wit.U64{}, nil
	}
	return nil, errors.Incompatible(path, fmt.Sprintf("no WIT integer of %d bytes", e.Size))
}

func byteTuple(n int, path []string) (*wit.TypeDef, error) {
	if n > MaxTupleLen {
		return nil, errors.Incompatible(path, fmt.Sprintf("%d-byte array exceeds tuple limit %d", n, MaxTupleLen))
	}
	types := make([]wit.Type, n)
	for i := range types {
		types[i] = wit.U8{}
	}
	return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
}

// KebabCase converts a struct name such as "LowerTurtle" to the WIT
// identifier "lower-turtle".
func KebabCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
