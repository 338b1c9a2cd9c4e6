package math32

import "math/bits"

// Bitmap is a fixed-width bit set indexed by uint32.
type Bitmap []uint64

// NewBitmap returns a bitmap able to hold bits [0, n) without growing.
func NewBitmap(n int) Bitmap {
	return make(Bitmap, (n+63)>>6)
}

// Set sets the bit x in the bitmap and grows it if necessary.
func (dst *Bitmap) Set(x uint32) {
	blkAt := int(x >> 6)
	if blkAt >= len(*dst) {
		grown := make(Bitmap, blkAt+1)
		copy(grown, *dst)
		*dst = grown
	}
	(*dst)[blkAt] |= 1 << (x % 64)
}

// Remove removes the bit x from the bitmap, but does not shrink it.
func (dst Bitmap) Remove(x uint32) {
	if blkAt := int(x >> 6); blkAt < len(dst) {
		dst[blkAt] &^= 1 << (x % 64)
	}
}

// Contains checks whether a value is contained in the bitmap or not.
func (dst Bitmap) Contains(x uint32) bool {
	blkAt := int(x >> 6)
	if blkAt >= len(dst) {
		return false
	}
	return dst[blkAt]&(1<<(x%64)) != 0
}

// Reset clears every bit, keeping the allocation.
func (dst Bitmap) Reset() {
	for i := range dst {
		dst[i] = 0
	}
}

// Count returns the number of set bits.
func (dst Bitmap) Count() int {
	n := 0
	for _, blk := range dst {
		n += bits.OnesCount64(blk)
	}
	return n
}
