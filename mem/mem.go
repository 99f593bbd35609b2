// Package mem provides read access to guest physical memory.
package mem

// View is byte-addressable guest memory.
//
// Bytes returns the size bytes starting at guest address addr. The result
// may be shorter than size when the range runs past the end of mapped
// memory, and is nil when addr itself is unmapped. Callers must not
// retain or modify the returned slice.
type View interface {
	Bytes(addr, size uint32) []byte
}

// Flat is a View over one contiguous region starting at Base.
type Flat struct {
	Base uint32
	Data []byte
}

// NewFlat returns a zeroed region of size bytes mapped at base.
func NewFlat(base, size uint32) *Flat {
	return &Flat{Base: base, Data: make([]byte, size)}
}

// Bytes implements View.
func (f *Flat) Bytes(addr, size uint32) []byte {
	if addr < f.Base {
		return nil
	}
	off := uint64(addr - f.Base)
	if off >= uint64(len(f.Data)) {
		return nil
	}
	end := min(off+uint64(size), uint64(len(f.Data)))
	return f.Data[off:end]
}

// Write copies p into guest memory at addr and returns the number of
// bytes written; bytes outside the region are dropped.
func (f *Flat) Write(addr uint32, p []byte) int {
	dst := f.Bytes(addr, uint32(len(p)))
	return copy(dst, p)
}
