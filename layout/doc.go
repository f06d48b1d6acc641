// Package layout computes byte layouts for parsed format strings.
//
// Resolve walks the codes of a format.Spec and assigns each element an
// offset and size. The rules depend on the format's mode:
//
//   - Native ('@' or no modifier): sizes follow the target Platform's C ABI,
//     every field is placed at a multiple of its alignment and the total is
//     rounded up to the largest member alignment.
//   - Standard ('=', '<', '>', '!'): fixed sizes (h=2, i=4, l=4, q=8, f=4,
//     d=8), no padding, total is the exact sum.
//
// Gaps inserted for alignment appear as implicit pad entries, so entries
// always tile the layout without holes or overlap.
//
// # Nested structs
//
// A backtick code such as "2`Point`" embeds another layout by value. Names
// are looked up through a Resolver supplied by the caller; the registry
// package provides one.
//
// # Usage
//
//	spec, _ := format.Parse("@bhlbibqBHLbIbQ3s")
//	l, err := layout.Resolve(spec, nil, layout.WithPlatform(layout.LP64))
//	// l.Size() == 88
package layout
