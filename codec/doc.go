// Package codec converts between values and the bytes of a layout.
//
// Pack takes one value per slot of the layout, in order. Accepted Go types:
//
//   - bool fields ('?'): bool or a named bool type
//   - integer fields: any Go integer type or named integer type; the value
//     must fit the field's width
//   - float fields ('f', 'd'): any Go float type or named float type
//   - byte fields ('Ns'): []byte or string of at most N bytes, zero-filled
//   - nested fields: []any holding the nested struct's slot values
//
// Unpack returns the canonical Go type of each slot: bool, int8..int64 and
// uint8..uint64 by field width and signedness, float32, float64, []byte
// (always a copy) and []any for nested structs. Pad bytes are written as
// zero and skipped when decoding.
//
// Values are never converted between categories: an integer for a float
// field, a float for an integer field or an integer for a bool field is a
// type_mismatch error.
//
// Packing is all-or-nothing: on error no output is produced and a caller
// buffer passed to PackInto is left untouched.
package codec
