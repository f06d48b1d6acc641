package guestmem

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/structfmt/codec"
	"github.com/wippyai/structfmt/errors"
	"github.com/wippyai/structfmt/layout"
)

// ReallocExport is the allocator export of Component Model guests.
const ReallocExport = "cabi_realloc"

// Pack encodes values and writes them at offset. Memory is only written
// once encoding succeeded and the whole range is in bounds.
func Pack(mem Memory, offset uint32, l *layout.Layout, values []any) error {
	if mem == nil {
		return errors.InvalidInput(errors.PhaseMemory, "memory is nil")
	}
	if err := checkBounds(mem, offset, l.Size()); err != nil {
		return err
	}
	buf, err := codec.Pack(l, values)
	if err != nil {
		return err
	}
	return mem.Write(offset, buf)
}

// Unpack decodes the layout stored at offset.
func Unpack(mem Memory, offset uint32, l *layout.Layout) ([]any, error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseMemory, "memory is nil")
	}
	if err := checkBounds(mem, offset, l.Size()); err != nil {
		return nil, err
	}
	data, err := mem.Read(offset, uint32(l.Size()))
	if err != nil {
		return nil, err
	}
	return codec.Unpack(l, data)
}

func checkBounds(mem Memory, offset uint32, size int) error {
	limit := uint64(mem.Size())
	if uint64(offset)+uint64(size) > limit {
		return errors.OutOfBounds(errors.PhaseMemory, int(offset), size, int(limit))
	}
	return nil
}

// Allocator allocates guest memory through cabi_realloc.
type Allocator struct {
	Fn api.Function
}

// NewAllocator returns the allocator exported by mod, or a not_found error.
func NewAllocator(mod api.Module) (*Allocator, error) {
	fn := mod.ExportedFunction(ReallocExport)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseMemory, "export", ReallocExport)
	}
	return &Allocator{Fn: fn}, nil
}

// Alloc allocates size bytes aligned to align.
func (a *Allocator) Alloc(ctx context.Context, size, align uint32) (uint32, error) {
	results, err := a.Fn.Call(ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseMemory, errors.KindInvalidInput, err, "allocation failed")
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseMemory, "allocation returned no result")
	}
	return uint32(results[0]), nil
}

// Free releases a block obtained from Alloc.
func (a *Allocator) Free(ctx context.Context, ptr, size, align uint32) {
	_, _ = a.Fn.Call(ctx, uint64(ptr), uint64(size), uint64(align), 0)
}

// Store packs values into a fresh block allocated in mod and returns the
// guest address. Values are encoded before allocating, so an encoding
// error allocates nothing.
func Store(ctx context.Context, mod api.Module, l *layout.Layout, values []any) (uint32, error) {
	alloc, err := NewAllocator(mod)
	if err != nil {
		return 0, err
	}
	mem := Wrap(mod.Memory())
	if mem == nil {
		return 0, errors.NotFound(errors.PhaseMemory, "memory", "memory")
	}

	buf, err := codec.Pack(l, values)
	if err != nil {
		return 0, err
	}

	size, align := uint32(l.Size()), uint32(l.Align())
	ptr, err := alloc.Alloc(ctx, size, align)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(ptr, buf); err != nil {
		alloc.Free(ctx, ptr, size, align)
		return 0, err
	}
	return ptr, nil
}

// Load decodes the layout at ptr in mod's memory.
func Load(mod api.Module, ptr uint32, l *layout.Layout) ([]any, error) {
	return Unpack(Wrap(mod.Memory()), ptr, l)
}
