package bitblock

import "fmt"

// MalformedInputError reports a chunk that cannot be loaded into a Buffer.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// Buffer holds one test vector (TV) as blocklen bit-planes, each a packed
// bit-array of length N = floor(len(data)*8 / blocklen). Planes are
// rebuilt wholesale on every Load; nothing survives between chunks.
type Buffer struct {
	blocklen int
	n        int
	planes   []Packed
}

// NewBuffer creates an empty buffer for the given block size in bits.
func NewBuffer(blocklen int) *Buffer {
	return &Buffer{blocklen: blocklen}
}

// Blocklen returns the configured block size in bits.
func (b *Buffer) Blocklen() int { return b.blocklen }

// NBlocks returns the number of whole blocks loaded by the last Load.
func (b *Buffer) NBlocks() int { return b.n }

// Plane returns the bit-plane for variable v: bit i is the v-th bit of
// block i.
func (b *Buffer) Plane(v int) Packed { return b.planes[v] }

// Load interprets data as a sequence of MSB-first bits and repacks it
// into blocklen bit-planes. Byte B at stream position i contributes bit
// 8*i+j as the (7-j)-th bit of B. Any trailing bits that do not form a
// full block are discarded. Load fails only when data is empty.
func (b *Buffer) Load(data []byte) error {
	if len(data) == 0 {
		return &MalformedInputError{Reason: "zero-length chunk"}
	}

	n := (len(data) * 8) / b.blocklen
	b.n = n
	b.planes = make([]Packed, b.blocklen)
	for v := range b.planes {
		b.planes[v] = NewPacked(n)
	}

	total := n * b.blocklen
	for i := 0; i < total; i++ {
		byteIdx := i / 8
		bitInByte := uint(7 - i%8)
		if (data[byteIdx]>>bitInByte)&1 == 0 {
			continue
		}
		blockIdx := i / b.blocklen
		v := i % b.blocklen
		b.planes[v].Set(blockIdx)
	}
	return nil
}
