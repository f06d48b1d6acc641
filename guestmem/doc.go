// Package guestmem packs and unpacks structs in WebAssembly linear memory.
//
// It adapts a wazero api.Memory so a layout can be written to or read from a
// guest address directly. Layouts meant to match C or Rust structs compiled
// for the guest should be resolved with layout.Wasm32.
//
//	ptr, err := guestmem.Store(ctx, mod, l, values) // allocates via cabi_realloc
//	vals, err := guestmem.Unpack(guestmem.Wrap(mod.Memory()), ptr, l)
//
// All accesses are bounds-checked; a failed Pack leaves memory unchanged.
package guestmem
