package fs

import (
	"fmt"

	"github.com/dargueta/ds3fs/block"
)

// Mount reads the superblock from block 0 and returns an Engine bound to
// the region layout it describes. Grounded on drivers/unixv1/driver.go's
// Mount(), which likewise reads a fixed leading region before any other
// operation can run.
func Mount(dev *block.Device) (*Engine, error) {
	blk, err := dev.ReadBlock(0)
	if err != nil {
		return nil, err
	}
	sb, err := DecodeSuperblock(blk[:])
	if err != nil {
		return nil, err
	}
	// No magic number check: callers are responsible for supplying a
	// properly formatted image. Format still writes superblockMagic.
	if sb.BlockSize != BlockSize {
		return nil, fmt.Errorf("unsupported block size %d", sb.BlockSize)
	}
	return &Engine{dev: dev, sb: sb}, nil
}
