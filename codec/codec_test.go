package codec

import (
	"bytes"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/format"
	"github.com/wippyai/structfmt/layout"
)

func compile(t *testing.T, source string, r layout.Resolver, p layout.Platform) *layout.Layout {
	t.Helper()
	spec, err := format.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	l, err := layout.Resolve(spec, r, layout.WithPlatform(p))
	if err != nil {
		t.Fatalf("Resolve(%q): %v", source, err)
	}
	return l
}

func TestPack_Simple(t *testing.T) {
	l := compile(t, ">hhl", nil, layout.LP64)
	buf, err := Pack(l, []any{1, 2, 3})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0, 1, 0, 2, 0, 0, 0, 3}
	if !bytes.Equal(buf, want) {
		t.Errorf("Pack = %v, want %v", buf, want)
	}

	got, err := Unpack(l, buf)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	wantValues := []any{int16(1), int16(2), int32(3)}
	if !reflect.DeepEqual(got, wantValues) {
		t.Errorf("Unpack = %#v, want %#v", got, wantValues)
	}
}

func TestPack_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		value  any
		little []byte
	}{
		{"char", "b", int8(7), []byte{7}},
		{"char negative", "b", int8(-7), []byte{249}},
		{"uchar", "B", uint8(249), []byte{249}},
		{"short", "h", int16(700), []byte{188, 2}},
		{"short negative", "h", int16(-700), []byte{68, 253}},
		{"ushort", "H", uint16(64836), []byte{68, 253}},
		{"int", "i", int32(70_000_000), []byte{128, 29, 44, 4}},
		{"int negative", "i", int32(-70_000_000), []byte{128, 226, 211, 251}},
		{"uint", "I", uint32(4_224_967_296), []byte{128, 226, 211, 251}},
		{"long", "l", int32(-70_000_000), []byte{128, 226, 211, 251}},
		{"ulong", "L", uint32(70_000_000), []byte{128, 29, 44, 4}},
		{"long long", "q", int64(-2), []byte{254, 255, 255, 255, 255, 255, 255, 255}},
		{"float", "f", float32(2.0), []byte{0, 0, 0, 64}},
		{"float negative", "f", float32(-2.0), []byte{0, 0, 0, 192}},
		{"double", "d", float64(-2.0), []byte{0, 0, 0, 0, 0, 0, 0, 192}},
		{"bool true", "?", true, []byte{1}},
		{"bool false", "?", false, []byte{0}},
	}

	for _, tt := range tests {
		big := slices.Clone(tt.little)
		slices.Reverse(big)
		fixtures := map[string][]byte{"<": tt.little, ">": big, "!": big, "=": tt.little}

		for modifier, want := range fixtures {
			t.Run(tt.name+" "+modifier, func(t *testing.T) {
				l := compile(t, modifier+tt.code, nil, layout.LP64)
				buf, err := Pack(l, []any{tt.value})
				if err != nil {
					t.Fatalf("Pack: %v", err)
				}
				if !bytes.Equal(buf, want) {
					t.Errorf("Pack = %v, want %v", buf, want)
				}
				got, err := Unpack(l, buf)
				if err != nil {
					t.Fatalf("Unpack: %v", err)
				}
				if !reflect.DeepEqual(got, []any{tt.value}) {
					t.Errorf("Unpack = %#v, want %#v", got, tt.value)
				}
			})
		}
	}
}

func TestRoundTrip_AllModes(t *testing.T) {
	signed := []any{
		int8(100), int16(-32000), int32(math.MinInt32), int32(math.MinInt32),
		int64(math.MinInt64), float32(math.Pi), float64(math.Pi), true,
	}
	unsigned := []any{
		uint8(128), uint16(65000), uint32(math.MaxUint32), uint32(math.MaxUint32),
		uint64(math.MaxUint64), float32(math.Pi), float64(math.Pi), true,
	}

	// wasm32 keeps long at 4 bytes in every mode
	for _, modifier := range []string{"", "@", "=", "<", ">", "!"} {
		t.Run("signed"+modifier, func(t *testing.T) {
			l := compile(t, modifier+"bhilqfd?", nil, layout.Wasm32)
			roundTrip(t, l, signed)
		})
		t.Run("unsigned"+modifier, func(t *testing.T) {
			l := compile(t, modifier+"BHILQfd?", nil, layout.Wasm32)
			roundTrip(t, l, unsigned)
		})
	}
}

func roundTrip(t *testing.T, l *layout.Layout, values []any) {
	t.Helper()
	buf, err := Pack(l, values)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(buf) != l.Size() {
		t.Fatalf("Pack produced %d bytes, layout size %d", len(buf), l.Size())
	}
	got, err := Unpack(l, buf)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Errorf("round trip = %#v, want %#v", got, values)
	}
}

func TestPack_NativePadding(t *testing.T) {
	l := compile(t, "@bq", nil, layout.LP64)
	dst := bytes.Repeat([]byte{0xAA}, l.Size())
	if err := PackInto(l, dst, []any{1, int64(-1)}); err != nil {
		t.Fatalf("PackInto: %v", err)
	}
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255}
	if !bytes.Equal(dst, want) {
		t.Errorf("PackInto = %v, want %v", dst, want)
	}
}

func TestPack_CFixture(t *testing.T) {
	l := compile(t, "@bhlbibqBHLbIbQ3s", nil, layout.LP64)
	values := []any{
		int8(1), int16(-2), int64(3), int8(4), int32(-5), int8(6), int64(7),
		uint8(8), uint16(9), uint64(10), int8(11), uint32(12), int8(13), uint64(14), []byte("abc"),
	}
	roundTrip(t, l, values)

	buf, _ := Pack(l, values)
	if buf[80] != 'a' || buf[82] != 'c' || buf[83] != 0 {
		t.Errorf("bytes field not at offset 80: % x", buf[80:])
	}
	if buf[72] != 14 {
		t.Errorf("Q not at offset 72: % x", buf[72:80])
	}
}

func TestPack_OnlyPadding(t *testing.T) {
	l := compile(t, "3x", nil, layout.LP64)
	buf, err := Pack(l, nil)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !bytes.Equal(buf, []byte{0, 0, 0}) {
		t.Errorf("Pack = %v, want three zero bytes", buf)
	}
	got, err := Unpack(l, []byte{9, 9, 9})
	if err != nil || len(got) != 0 {
		t.Errorf("Unpack = %v, %v; want no values", got, err)
	}
}

func TestPack_ZeroSize(t *testing.T) {
	l := compile(t, "0x0s", nil, layout.LP64)
	buf, err := Pack(l, []any{})
	if err != nil || len(buf) != 0 {
		t.Fatalf("Pack = %v, %v; want empty", buf, err)
	}
	got, err := Unpack(l, []byte{})
	if err != nil || len(got) != 0 {
		t.Errorf("Unpack = %v, %v; want no values", got, err)
	}
}

func TestPack_Bytes(t *testing.T) {
	l := compile(t, "<4s", nil, layout.LP64)

	buf, err := Pack(l, []any{"ab"})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !bytes.Equal(buf, []byte{'a', 'b', 0, 0}) {
		t.Errorf("short value not zero padded: %v", buf)
	}

	got, _ := Unpack(l, buf)
	if !bytes.Equal(got[0].([]byte), []byte{'a', 'b', 0, 0}) {
		t.Errorf("Unpack = %v", got[0])
	}

	got[0].([]byte)[0] = 'z'
	if buf[0] != 'a' {
		t.Error("Unpack returned a view of the input buffer")
	}

	_, err = Pack(l, []any{[]byte("abcde")})
	if !errors.Is(err, errors.ErrValueTooLarge) {
		t.Errorf("oversized error = %v, want value too large", err)
	}
}

func TestPack_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		values []any
		target error
		path   string
	}{
		{"int8 overflow", "b", []any{300}, errors.ErrValueOutOfRange, "[0]"},
		{"uint8 negative", "B", []any{-1}, errors.ErrValueOutOfRange, "[0]"},
		{"uint16 overflow", "<H", []any{65536}, errors.ErrValueOutOfRange, "[0]"},
		{"int32 overflow", "<hi", []any{0, int64(math.MaxInt32) + 1}, errors.ErrValueOutOfRange, "[1]"},
		{"float32 overflow", "<f", []any{1e300}, errors.ErrValueOutOfRange, "[0]"},
		{"string into int", "<i", []any{"7"}, errors.ErrTypeMismatch, "[0]"},
		{"fractional into int", "<i", []any{1.5}, errors.ErrTypeMismatch, "[0]"},
		{"int into bytes", "<2s", []any{7}, errors.ErrTypeMismatch, "[0]"},
		{"nil into bool", "?", []any{nil}, errors.ErrTypeMismatch, "[0]"},
		{"too few", "<ii", []any{1}, errors.ErrArityMismatch, ""},
		{"too many", "<i", []any{1, 2}, errors.ErrArityMismatch, ""},
		{"pad takes no value", "<xi", []any{0, 1}, errors.ErrArityMismatch, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := compile(t, tt.source, nil, layout.LP64)
			buf, err := Pack(l, tt.values)
			if buf != nil {
				t.Errorf("Pack returned %v on error", buf)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("Pack error = %v, want %v", err, tt.target)
			}
			e := err.(*errors.Error)
			if e.Phase != errors.PhasePack {
				t.Errorf("Phase = %s, want pack", e.Phase)
			}
			if got := strings.Join(e.Path, "."); got != tt.path {
				t.Errorf("Path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestPack_Coercion(t *testing.T) {
	type port uint16
	type flag bool
	type label string

	t.Run("widening and named types", func(t *testing.T) {
		l := compile(t, "<Hiq?3s", nil, layout.LP64)
		buf, err := Pack(l, []any{port(8080), int8(-3), uint32(7), flag(true), label("ab")})
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		got, _ := Unpack(l, buf)
		want := []any{uint16(8080), int32(-3), int64(7), true, []byte("ab\x00")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Unpack = %#v, want %#v", got, want)
		}
	})

	rejected := []struct {
		name   string
		source string
		value  any
	}{
		{"int into float32", "<f", int(16777217)},
		{"int64 into float64", "<d", int64(9007199254740993)},
		{"uint into double", "<d", uint8(1)},
		{"int into bool", "?", int(2)},
		{"zero into bool", "?", 0},
		{"integral float into int8", "<b", float64(3)},
		{"integral float32 into uint", "<I", float32(1)},
		{"bool into int", "<i", true},
		{"float64 into bool", "?", float64(1)},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			l := compile(t, tt.source, nil, layout.LP64)
			buf, err := Pack(l, []any{tt.value})
			if !errors.Is(err, errors.ErrTypeMismatch) {
				t.Fatalf("Pack(%T) = %v, %v; want type mismatch", tt.value, buf, err)
			}
		})
	}
}

func TestPackInto(t *testing.T) {
	l := compile(t, "<bb", nil, layout.LP64)

	t.Run("untouched on failure", func(t *testing.T) {
		dst := []byte{0xAA, 0xAA}
		err := PackInto(l, dst, []any{1, 300})
		if !errors.Is(err, errors.ErrValueOutOfRange) {
			t.Fatalf("error = %v, want value out of range", err)
		}
		if !bytes.Equal(dst, []byte{0xAA, 0xAA}) {
			t.Errorf("dst modified on failure: %v", dst)
		}
	})

	t.Run("wrong size", func(t *testing.T) {
		err := PackInto(l, make([]byte, 3), []any{1, 2})
		if !errors.Is(err, errors.ErrBufferSizeMismatch) {
			t.Errorf("error = %v, want buffer size mismatch", err)
		}
	})

	t.Run("large layout bypasses pool cap", func(t *testing.T) {
		big := compile(t, "<100000s", nil, layout.LP64)
		dst := make([]byte, big.Size())
		if err := PackInto(big, dst, []any{"x"}); err != nil {
			t.Fatalf("PackInto: %v", err)
		}
		if dst[0] != 'x' || dst[1] != 0 {
			t.Errorf("unexpected prefix % x", dst[:2])
		}
	})
}

func TestUnpack_BufferSize(t *testing.T) {
	l := compile(t, "<2if?", nil, layout.LP64)
	if l.Size() != 13 {
		t.Fatalf("Size() = %d, want 13", l.Size())
	}

	for _, n := range []int{12, 14, 0} {
		_, err := Unpack(l, make([]byte, n))
		if !errors.Is(err, errors.ErrBufferSizeMismatch) {
			t.Errorf("Unpack(%d bytes) error = %v, want buffer size mismatch", n, err)
		}
	}

	got, err := UnpackPrefix(l, make([]byte, 14))
	if err != nil || len(got) != 4 {
		t.Errorf("UnpackPrefix(14 bytes) = %v, %v", got, err)
	}
	if _, err := UnpackPrefix(l, make([]byte, 12)); !errors.Is(err, errors.ErrBufferSizeMismatch) {
		t.Errorf("UnpackPrefix(12 bytes) error = %v, want buffer size mismatch", err)
	}
}

func TestUnpack_BoolNonZero(t *testing.T) {
	l := compile(t, "??", nil, layout.LP64)
	got, err := Unpack(l, []byte{2, 0})
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got[0] != true || got[1] != false {
		t.Errorf("Unpack = %v, want [true false]", got)
	}
}

func TestUnpackAll(t *testing.T) {
	l := compile(t, "<h", nil, layout.LP64)
	records, err := UnpackAll(l, []byte{1, 0, 2, 0, 3, 0})
	if err != nil {
		t.Fatalf("UnpackAll: %v", err)
	}
	want := [][]any{{int16(1)}, {int16(2)}, {int16(3)}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("UnpackAll = %v, want %v", records, want)
	}

	if _, err := UnpackAll(l, []byte{1, 0, 2}); !errors.Is(err, errors.ErrBufferSizeMismatch) {
		t.Errorf("error = %v, want buffer size mismatch", err)
	}

	empty := compile(t, "", nil, layout.LP64)
	if _, err := UnpackAll(empty, nil); err == nil {
		t.Error("UnpackAll with zero-size layout should fail")
	}
}

func TestNested(t *testing.T) {
	lower := compile(t, "bQh", nil, layout.LP64)
	resolver := layout.ResolverFunc(func(name string) (*layout.Layout, error) {
		if name == "LowerTurtle" {
			return lower, nil
		}
		return nil, nil
	})
	lowest := compile(t, "i2`LowerTurtle`", resolver, layout.LP64)

	values := []any{
		-1,
		[]any{100, 127, 128},
		[]any{100, 10_000_000_000, -32000},
	}
	buf, err := Pack(lowest, values)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(buf) != 56 {
		t.Fatalf("Pack produced %d bytes, want 56", len(buf))
	}

	got, err := Unpack(lowest, buf)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	want := []any{
		int32(-1),
		[]any{int8(100), uint64(127), int16(128)},
		[]any{int8(100), uint64(10_000_000_000), int16(-32000)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unpack = %#v, want %#v", got, want)
	}

	t.Run("error path", func(t *testing.T) {
		_, err := Pack(lowest, []any{0, []any{0, 0, 0}, []any{300, 0, 0}})
		if !errors.Is(err, errors.ErrValueOutOfRange) {
			t.Fatalf("error = %v, want value out of range", err)
		}
		if got := strings.Join(err.(*errors.Error).Path, "."); got != "[2].[0]" {
			t.Errorf("Path = %q, want [2].[0]", got)
		}
	})

	t.Run("nested arity", func(t *testing.T) {
		_, err := Pack(lowest, []any{0, []any{0, 0}, []any{0, 0, 0}})
		if !errors.Is(err, errors.ErrArityMismatch) {
			t.Errorf("error = %v, want arity mismatch", err)
		}
	})

	t.Run("nested wrong type", func(t *testing.T) {
		_, err := Pack(lowest, []any{0, []int{0, 0, 0}, []any{0, 0, 0}})
		if !errors.Is(err, errors.ErrTypeMismatch) {
			t.Fatalf("error = %v, want type mismatch", err)
		}
		if !strings.Contains(err.Error(), "LowerTurtle") {
			t.Errorf("error %q should name the struct", err)
		}
	})

	t.Run("nested keeps its byte order", func(t *testing.T) {
		big := compile(t, ">H", nil, layout.LP64)
		r := layout.ResolverFunc(func(string) (*layout.Layout, error) { return big, nil })
		outer := compile(t, "<H`Big`", r, layout.LP64)
		buf, err := Pack(outer, []any{1, []any{1}})
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		if !bytes.Equal(buf, []byte{1, 0, 0, 1}) {
			t.Errorf("Pack = %v, want [1 0 0 1]", buf)
		}
	})
}
