package layout

import (
	"encoding/binary"
	"runtime"
	"sort"
	"strconv"

	"github.com/wippyai/structfmt/format"
)

// Platform describes the C ABI used for native-mode layouts.
type Platform struct {
	ByteOrder    binary.ByteOrder
	Name         string
	ShortSize    int
	IntSize      int
	LongSize     int
	LongLongSize int
	PointerSize  int
	// MaxAlign caps scalar alignment (4 on i386, where double and
	// long long are 4-aligned inside structs).
	MaxAlign int
}

var (
	// LP64 is the Unix 64-bit model (linux/amd64, darwin/arm64).
	LP64 = Platform{
		Name:         "lp64",
		ByteOrder:    binary.LittleEndian,
		ShortSize:    2,
		IntSize:      4,
		LongSize:     8,
		LongLongSize: 8,
		PointerSize:  8,
		MaxAlign:     8,
	}

	// LLP64 is the Windows 64-bit model.
	LLP64 = Platform{
		Name:         "llp64",
		ByteOrder:    binary.LittleEndian,
		ShortSize:    2,
		IntSize:      4,
		LongSize:     4,
		LongLongSize: 8,
		PointerSize:  8,
		MaxAlign:     8,
	}

	// ILP32 is a 32-bit model with naturally aligned 8-byte types (arm).
	ILP32 = Platform{
		Name:         "ilp32",
		ByteOrder:    binary.LittleEndian,
		ShortSize:    2,
		IntSize:      4,
		LongSize:     4,
		LongLongSize: 8,
		PointerSize:  4,
		MaxAlign:     8,
	}

	// I386 is the System V i386 model.
	I386 = Platform{
		Name:         "i386",
		ByteOrder:    binary.LittleEndian,
		ShortSize:    2,
		IntSize:      4,
		LongSize:     4,
		LongLongSize: 8,
		PointerSize:  4,
		MaxAlign:     4,
	}

	// Wasm32 matches clang's wasm32 target, the layout WebAssembly guests
	// compiled from C or Rust see in linear memory.
	Wasm32 = Platform{
		Name:         "wasm32",
		ByteOrder:    binary.LittleEndian,
		ShortSize:    2,
		IntSize:      4,
		LongSize:     4,
		LongLongSize: 8,
		PointerSize:  4,
		MaxAlign:     8,
	}
)

// Host is the platform of the running process.
var Host = hostPlatform()

func hostPlatform() Platform {
	var p Platform
	switch {
	case runtime.GOARCH == "386":
		p = I386
	case strconv.IntSize == 32:
		p = ILP32
	case runtime.GOOS == "windows":
		p = LLP64
	default:
		p = LP64
	}
	p.Name = "host"
	p.ByteOrder = binary.NativeEndian
	return p
}

var platforms = map[string]Platform{
	"host":   Host,
	"lp64":   LP64,
	"llp64":  LLP64,
	"ilp32":  ILP32,
	"i386":   I386,
	"wasm32": Wasm32,
}

// PlatformByName returns a predefined platform.
func PlatformByName(name string) (Platform, bool) {
	p, ok := platforms[name]
	return p, ok
}

// PlatformNames returns the predefined platform names, sorted.
func PlatformNames() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the native element size of a scalar tag.
func (p Platform) Size(tag format.Tag) int {
	switch tag {
	case format.TagInt16, format.TagUint16:
		return p.ShortSize
	case format.TagInt32, format.TagUint32:
		return p.IntSize
	case format.TagLong, format.TagUlong:
		return p.LongSize
	case format.TagInt64, format.TagUint64:
		return p.LongLongSize
	case format.TagSsize, format.TagSize:
		return p.PointerSize
	}
	return tag.StandardSize()
}

// Align returns the native alignment of a scalar tag.
func (p Platform) Align(tag format.Tag) int {
	if tag == format.TagPad || tag == format.TagBytes {
		return 1
	}
	return min(p.Size(tag), p.MaxAlign)
}

// SameABI reports whether p and q lay out native structs identically,
// ignoring their names.
func (p Platform) SameABI(q Platform) bool {
	var a, b [2]byte
	p.ByteOrder.PutUint16(a[:], 1)
	q.ByteOrder.PutUint16(b[:], 1)
	return a == b &&
		p.ShortSize == q.ShortSize &&
		p.IntSize == q.IntSize &&
		p.LongSize == q.LongSize &&
		p.LongLongSize == q.LongLongSize &&
		p.PointerSize == q.PointerSize &&
		p.MaxAlign == q.MaxAlign
}
