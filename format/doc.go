// Package format parses struct format strings.
//
// A format string is an optional byte-order modifier followed by codes:
//
//	spec      := modifier? code*
//	modifier  := '@' | '=' | '<' | '>' | '!'
//	code      := repeat? (type_char | '`' Name '`')
//	type_char := x ? b B h H i I l L q Q n N f d s
//
// Spaces may separate codes but not a repeat count from its type
// character. Parse returns an immutable Spec; sizes and offsets are
// computed from it by the layout package.
//
//	spec, err := format.Parse("<2if?")
//	// spec.Mode == format.ModeLittleEndian, len(spec.Codes) == 3
//
// Errors are *errors.Error values of kind malformed_format carrying the
// offending byte span of the source.
package format
