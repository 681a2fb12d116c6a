package fs

import "github.com/dargueta/ds3fs/block"

// readDirectBlocks reads the first `count` blocks referenced by `direct`.
func readDirectBlocks(dev *block.Device, direct [DirectPtrs]uint32, count int) ([][BlockSize]byte, error) {
	blocks := make([][BlockSize]byte, count)
	for i := 0; i < count; i++ {
		blk, err := dev.ReadBlock(block.ID(direct[i]))
		if err != nil {
			return nil, err
		}
		blocks[i] = blk
	}
	return blocks, nil
}

// direntAt decodes the entry at logical index `idx` out of `blocks`.
func direntAt(blocks [][BlockSize]byte, idx uint32) (dirent, error) {
	blockIdx := idx / entriesPerBlock
	offset := (idx % entriesPerBlock) * direntSize
	return decodeDirent(blocks[blockIdx][offset : offset+direntSize])
}

// setDirentAt encodes `d` at logical index `idx` into `blocks`.
func setDirentAt(blocks [][BlockSize]byte, idx uint32, d *dirent) error {
	blockIdx := idx / entriesPerBlock
	offset := (idx % entriesPerBlock) * direntSize
	return encodeDirent(blocks[blockIdx][offset:offset+direntSize], d)
}

// findDirentByName scans the first `numEntries` packed entries for `name`,
// returning its logical index and decoded record.
func findDirentByName(blocks [][BlockSize]byte, numEntries uint32, name string) (uint32, dirent, bool, error) {
	for i := uint32(0); i < numEntries; i++ {
		d, err := direntAt(blocks, i)
		if err != nil {
			return 0, dirent{}, false, err
		}
		if d.nameString() == name {
			return i, d, true, nil
		}
	}
	return 0, dirent{}, false, nil
}
