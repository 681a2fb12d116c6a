package fs

import (
	"github.com/boljen/go-bitmap"
	"github.com/dargueta/ds3fs/block"
)

// bitmapRegion is an in-memory view of a packed, LSB-first allocation
// bitmap backed by a contiguous run of device blocks. It generalizes the
// first-fit scanning allocator in drivers/common/allocatormap.go (there,
// a standalone in-memory bitmap.New(totalUnits)) to one whose contents
// are read from, and written back to, specific device blocks.
type bitmapRegion struct {
	start bitmapRegionAddr
	// limit is the number of meaningful bits (num inodes or num data
	// blocks); trailing bits out to a whole block boundary are zero and
	// ignored, per the spec's in-memory-form invariant.
	limit uint32
	bits  bitmap.Bitmap
}

// bitmapRegionAddr is the first block of a bitmap region on disk.
type bitmapRegionAddr = block.ID

func loadBitmapRegion(dev *block.Device, start block.ID, lengthBlocks uint32, limit uint32) (*bitmapRegion, error) {
	raw := make([]byte, int(lengthBlocks)*BlockSize)
	for i := uint32(0); i < lengthBlocks; i++ {
		blk, err := dev.ReadBlock(start + block.ID(i))
		if err != nil {
			return nil, err
		}
		copy(raw[int(i)*BlockSize:], blk[:])
	}

	return &bitmapRegion{
		start: start,
		limit: limit,
		bits:  bitmap.Bitmap(raw),
	}, nil
}

// Get reports whether bit `i` is set.
func (r *bitmapRegion) Get(i uint32) bool {
	return r.bits.Get(int(i))
}

// Set flips bit `i` to `value`.
func (r *bitmapRegion) Set(i uint32, value bool) {
	r.bits.Set(int(i), value)
}

// FindFirstClear performs a first-fit scan over [0, limit) and returns the
// lowest-index clear bit. The second return value is false if the region
// is full.
func (r *bitmapRegion) FindFirstClear() (uint32, bool) {
	for i := uint32(0); i < r.limit; i++ {
		if !r.bits.Get(int(i)) {
			return i, true
		}
	}
	return 0, false
}

// CountSet returns the number of set bits in [0, limit).
func (r *bitmapRegion) CountSet() uint32 {
	var n uint32
	for i := uint32(0); i < r.limit; i++ {
		if r.bits.Get(int(i)) {
			n++
		}
	}
	return n
}

// writeBack persists the region as whole blocks, exactly the blocks it was
// loaded from.
func (r *bitmapRegion) writeBack(dev *block.Device, lengthBlocks uint32) error {
	raw := []byte(r.bits)
	for i := uint32(0); i < lengthBlocks; i++ {
		var blk [BlockSize]byte
		copy(blk[:], raw[int(i)*BlockSize:(int(i)+1)*BlockSize])
		if err := dev.WriteBlock(r.start+block.ID(i), blk[:]); err != nil {
			return err
		}
	}
	return nil
}
