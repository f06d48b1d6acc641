package witlayout

import (
	"fmt"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/layout"
)

// Compatible reports whether l's bytes are the Canonical ABI
// representation of the record Record would build for it. It returns an
// Incompatible error naming the first field whose offset differs.
func Compatible(l *layout.Layout) error {
	if !littleEndian(l) {
		return errors.Incompatible(nil, fmt.Sprintf("%q is %s; the Canonical ABI is little-endian", l.Format(), l.Mode()))
	}
	td, err := Record("compat", l)
	if err != nil {
		return err
	}
	return compare(NewCalculator(), td, l, nil)
}

func compare(calc *Calculator, td *wit.TypeDef, l *layout.Layout, path []string) error {
	info := calc.Calculate(td)
	rec := td.Kind.(*wit.Record)

	for _, field := range rec.Fields {
		e, ok := entryFor(l, field.Name)
		if !ok {
			continue
		}
		fieldPath := append(path, field.Name)
		want := info.FieldOffs[field.Name]
		if e.Offset != want {
			return errors.Incompatible(fieldPath, fmt.Sprintf("offset %d, canonical offset %d", e.Offset, want))
		}
		if e.Nested != nil {
			if !littleEndian(e.Nested) {
				return errors.Incompatible(fieldPath, fmt.Sprintf("nested %q is %s; the Canonical ABI is little-endian",
					e.Nested.Format(), e.Nested.Mode()))
			}
			if err := compare(calc, field.Type.(*wit.TypeDef), e.Nested, fieldPath); err != nil {
				return err
			}
		}
	}
	if l.Size() != info.Size {
		return errors.Incompatible(path, fmt.Sprintf("size %d, canonical size %d", l.Size(), info.Size))
	}
	return nil
}

// entryFor finds the entry behind a field name emitted by Record.
func entryFor(l *layout.Layout, name string) (layout.Entry, bool) {
	var want int
	pad := false
	switch {
	case len(name) > 3 && name[:3] == "pad":
		n, err := strconv.Atoi(name[3:])
		if err != nil {
			return layout.Entry{}, false
		}
		want, pad = n, true
	case len(name) > 1 && name[0] == 'f':
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			return layout.Entry{}, false
		}
		want = n
	default:
		return layout.Entry{}, false
	}

	pads := 0
	for i := 0; i < l.NumEntries(); i++ {
		e := l.EntryAt(i)
		if e.Implicit {
			continue
		}
		if e.IsPadding() {
			if pad && pads == want {
				return e, true
			}
			pads++
			continue
		}
		if !pad && e.Slot == want {
			return e, true
		}
	}
	return layout.Entry{}, false
}

func littleEndian(l *layout.Layout) bool {
	var b [2]byte
	l.ByteOrder().PutUint16(b[:], 1)
	return b[0] == 1
}
