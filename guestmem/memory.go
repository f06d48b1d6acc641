package guestmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/structfmt/errors"
)

// Memory is linear memory as seen by guestmem.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	Size() uint32
}

// Wrap adapts a wazero api.Memory. It returns nil for a nil memory.
func Wrap(mem api.Memory) Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Read returns a view of guest memory. The slice aliases memory and is
// invalidated by a grow.
func (m *Wrapper) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, int(offset), int(length), int(m.Mem.Size()))
	}
	return data, nil
}

// Write copies data into guest memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, int(offset), len(data), int(m.Mem.Size()))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}
