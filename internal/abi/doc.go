// Package abi provides internal utilities shared by the layout calculator
// and the codec.
//
// # Contents
//
//   - coerce.go: Coercion of Go values into fixed-width integer and float fields
//   - helpers.go: Alignment arithmetic, overflow-checked sizing, type names
//
// This package is internal to structfmt.
package abi
