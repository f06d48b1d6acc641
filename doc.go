// Package structfmt packs and unpacks binary structs described by compact
// format strings, in the style of Python's struct module.
//
// A format string names a byte order and a sequence of typed fields:
//
//	s := structfmt.MustCompile("<2if?")
//	buf, _ := s.Pack(1, 2, float32(0.5), true) // 13 bytes
//	vals, _ := s.Unpack(buf)                   // [int32(1) int32(2) float32(0.5) true]
//
// # Architecture Overview
//
//	structfmt/          Compile, Struct and Compiler (this package)
//	├── format/         Format string grammar and parser
//	├── layout/         Field resolution, alignment and platform ABIs
//	├── codec/          Pack/unpack between values and bytes
//	├── registry/       Named struct definitions for nested references
//	├── guestmem/       Pack/unpack in WebAssembly linear memory (wazero)
//	├── witlayout/      Component Model (WIT) record mapping
//	├── errors/         Structured error types
//	└── cmd/structc/    Command line tool
//
// # Byte order, size and alignment
//
//	@   native order, native sizes, native alignment (default)
//	=   native order, standard sizes, no alignment
//	<   little-endian, standard sizes, no alignment
//	>   big-endian, standard sizes, no alignment
//	!   network (big-endian), standard sizes, no alignment
//
// # Nested structs
//
// A backtick-quoted name embeds another struct by value:
//
//	reg := registry.New()
//	reg.MustDefine("Point", "<ii")
//	line := structfmt.MustCompile("<2`Point`", structfmt.WithRegistry(reg))
//	buf, _ := line.Pack([]any{0, 0}, []any{3, 4})
//
// # Caching
//
// Compile parses and resolves on every call. A Compiler memoizes the result
// per format string and platform and is safe for concurrent use.
package structfmt
