package fs

import (
	"github.com/dargueta/ds3fs/block"
	"github.com/dargueta/ds3fs/dserrors"
)

// inodeTable is the whole inode region loaded into memory as one
// contiguous buffer, read and written as a single sweep. Grounded on
// drivers/unixv1/driver.go's Mount(), which reads the entire inode
// region into memory once rather than paging individual records.
type inodeTable struct {
	start  block.ID
	length uint32 // region length, in blocks
	count  uint32 // number of inode slots (NumInodes)
	data   []byte
}

func loadInodeTable(dev *block.Device, start block.ID, lengthBlocks uint32, count uint32) (*inodeTable, error) {
	data := make([]byte, int(lengthBlocks)*BlockSize)
	for i := uint32(0); i < lengthBlocks; i++ {
		blk, err := dev.ReadBlock(start + block.ID(i))
		if err != nil {
			return nil, err
		}
		copy(data[int(i)*BlockSize:], blk[:])
	}
	return &inodeTable{start: start, length: lengthBlocks, count: count, data: data}, nil
}

// Get decodes the record for inode `i`.
func (t *inodeTable) Get(i uint32) (RawInode, error) {
	if i >= t.count {
		return RawInode{}, dserrors.ErrInvalidInode
	}
	off := int(i) * inodeRecordSize
	return decodeInode(t.data[off:])
}

// Set encodes `inode` into slot `i`.
func (t *inodeTable) Set(i uint32, inode RawInode) error {
	if i >= t.count {
		return dserrors.ErrInvalidInode
	}
	off := int(i) * inodeRecordSize
	return encodeInode(t.data[off:], &inode)
}

// writeBack persists the whole region as whole blocks.
func (t *inodeTable) writeBack(dev *block.Device) error {
	for i := uint32(0); i < t.length; i++ {
		var blk [BlockSize]byte
		copy(blk[:], t.data[int(i)*BlockSize:(int(i)+1)*BlockSize])
		if err := dev.WriteBlock(t.start+block.ID(i), blk[:]); err != nil {
			return err
		}
	}
	return nil
}
