package witlayout

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

// Render writes td and every record it references as WIT source,
// dependencies first.
func Render(td *wit.TypeDef) string {
	r := renderer{seen: make(map[*wit.TypeDef]bool)}
	r.record(td)
	return r.b.String()
}

type renderer struct {
	seen map[*wit.TypeDef]bool
	b    strings.Builder
}

func (r *renderer) record(td *wit.TypeDef) {
	if r.seen[td] {
		return
	}
	r.seen[td] = true

	rec, ok := td.Kind.(*wit.Record)
	if !ok {
		return
	}
	for _, f := range rec.Fields {
		if nested, ok := f.Type.(*wit.TypeDef); ok && nested.Name != nil {
			r.record(nested)
		}
	}

	if r.b.Len() > 0 {
		r.b.WriteByte('\n')
	}
	fmt.Fprintf(&r.b, "record %s {\n", typeName(td))
	for _, f := range rec.Fields {
		fmt.Fprintf(&r.b, "    %s: %s,\n", f.Name, typeName(f.Type))
	}
	r.b.WriteString("}\n")
}

func typeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.S8:
		return "s8"
	case wit.S16:
		return "s16"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if tup, ok := v.Kind.(*wit.Tuple); ok {
			parts := make([]string, len(tup.Types))
			for i, e := range tup.Types {
				parts[i] = typeName(e)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
