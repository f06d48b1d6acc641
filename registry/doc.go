// Package registry holds named struct definitions for nested references.
//
// A format such as "i2`Point`" embeds the struct named Point by value. The
// Registry maps names to format strings, resolves them lazily under one
// target platform and caches the resulting layouts. It implements
// layout.Resolver, so it can be passed straight to layout.Resolve.
//
//	reg := registry.New(registry.WithPlatform(layout.Wasm32))
//	reg.MustDefine("Point", "ii")
//	reg.MustDefine("Segment", "2`Point`")
//	l, err := reg.Layout("Segment") // 16 bytes
//
// A struct that contains itself, directly or through other structs, has no
// finite size and fails with a cyclic_reference error naming the chain.
//
// # Definitions file
//
// LoadYAML and LoadFile read definitions from YAML. Struct order is
// preserved:
//
//	platform: wasm32
//	structs:
//	  LowerTurtle: "bQh"
//	  LowestTurtle: "i2`LowerTurtle`"
package registry
