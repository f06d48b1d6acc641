package abi

import (
	"math"
	"reflect"
)

// Status is the outcome of a coercion.
type Status uint8

const (
	OK Status = iota
	WrongType
	OutOfRange
)

// integer is a Go number reduced to either a signed or an unsigned 64-bit
// value. Exactly one of the two is meaningful, selected by unsigned.
type integer struct {
	s        int64
	u        uint64
	unsigned bool
}

func toInteger(value any) (integer, Status) {
	switch v := value.(type) {
	case int:
		return integer{s: int64(v)}, OK
	case int8:
		return integer{s: int64(v)}, OK
	case int16:
		return integer{s: int64(v)}, OK
	case int32:
		return integer{s: int64(v)}, OK
	case int64:
		return integer{s: v}, OK
	case uint:
		return integer{u: uint64(v), unsigned: true}, OK
	case uint8:
		return integer{u: uint64(v), unsigned: true}, OK
	case uint16:
		return integer{u: uint64(v), unsigned: true}, OK
	case uint32:
		return integer{u: uint64(v), unsigned: true}, OK
	case uint64:
		return integer{u: v, unsigned: true}, OK
	case uintptr:
		return integer{u: uint64(v), unsigned: true}, OK
	case nil:
		return integer{}, WrongType
	}

	// Named numeric types (type Port uint16 etc.)
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return integer{s: rv.Int()}, OK
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return integer{u: rv.Uint(), unsigned: true}, OK
	}
	return integer{}, WrongType
}

// Signed coerces value into a two's complement integer of the given width.
// Any Go integer kind is accepted; floats and bools are WrongType.
func Signed(value any, bits int) (int64, Status) {
	n, st := toInteger(value)
	if st != OK {
		return 0, st
	}
	maxV := int64(1)<<(bits-1) - 1
	minV := -maxV - 1
	if n.unsigned {
		if n.u > uint64(maxV) {
			return 0, OutOfRange
		}
		return int64(n.u), OK
	}
	if n.s < minV || n.s > maxV {
		return 0, OutOfRange
	}
	return n.s, OK
}

// Unsigned coerces value into an unsigned integer of the given width.
func Unsigned(value any, bits int) (uint64, Status) {
	n, st := toInteger(value)
	if st != OK {
		return 0, st
	}
	maxV := uint64(math.MaxUint64)
	if bits < 64 {
		maxV = uint64(1)<<bits - 1
	}
	u := n.u
	if !n.unsigned {
		if n.s < 0 {
			return 0, OutOfRange
		}
		u = uint64(n.s)
	}
	if u > maxV {
		return 0, OutOfRange
	}
	return u, OK
}

// Float coerces value into a float of the given width. Only Go float kinds
// are accepted. NaN payloads are preserved. Finite values beyond the
// float32 range are OutOfRange.
func Float(value any, bits int) (float64, Status) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		return float64(v), OK
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return 0, WrongType
		}
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, WrongType
		}
	}
	if bits == 32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, OutOfRange
	}
	return f, OK
}

// Bool coerces value into a bool. Only bool kinds are accepted.
func Bool(value any) (bool, Status) {
	if b, ok := value.(bool); ok {
		return b, OK
	}
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.Bool {
		return rv.Bool(), OK
	}
	return false, WrongType
}

// Bytes coerces value into a byte slice. Strings are accepted as their bytes.
func Bytes(value any) ([]byte, Status) {
	switch v := value.(type) {
	case []byte:
		return v, OK
	case string:
		return []byte(v), OK
	}
	rv := reflect.ValueOf(value)
	if rv.IsValid() {
		switch {
		case rv.Kind() == reflect.String:
			return []byte(rv.String()), OK
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			return rv.Bytes(), OK
		}
	}
	return nil, WrongType
}
