// Package witlayout maps struct layouts to Component Model records.
//
// Record converts a layout into a WIT record type definition: integers and
// floats become the matching WIT primitives, byte arrays and explicit pad
// bytes become tuple<u8, ...> fields and nested structs become nested
// records. Implicit alignment padding is left out because the Canonical ABI
// inserts its own.
//
// Compatible reports whether the layout's bytes are exactly the Canonical
// ABI representation of that record, i.e. whether a guest can read a packed
// buffer as the record without conversion:
//
//	rec, _ := witlayout.Record("point", l)
//	if err := witlayout.Compatible(l); err == nil {
//		// l's bytes can be passed to the guest as rec
//	}
//
// # Layout Rules
//
// The Canonical ABI is little-endian and aligns every field naturally
// (u8=1, u16=2, u32=4, u64=8) with the record size rounded up to its
// largest alignment. Native layouts for layout.Wasm32 or layout.LP64 on a
// little-endian host usually match; standard-mode layouts only match when
// their fields happen to be aligned.
package witlayout
