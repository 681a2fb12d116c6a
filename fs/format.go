package fs

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/ds3fs/block"
)

// Format lays out a fresh file system image across `dev`, with room for
// exactly `numInodes` inodes, and creates the root directory as inode 0.
//
// Grounded on file_systems/unixv1/format.go: both compute bitmap region
// sizes from the requested inode count, lay out superblock/bitmaps/inode
// region/data region back to back, and write every region with
// binary.Write before returning. Here the geometry is dynamic (the
// teacher's unixv1 format hardcodes fixed bitmap offsets) since the spec
// does not fix an image size.
func Format(dev *block.Device, numInodes uint32) error {
	if numInodes == 0 {
		return fmt.Errorf("numInodes must be at least 1")
	}

	inodeBitmapLength := ceilBlocks(ceilBytes(numInodes, 8))
	inodeRegionLength := ceilBlocks(numInodes * inodeRecordSize)

	reserved := 1 + inodeBitmapLength + inodeRegionLength
	if reserved >= dev.TotalBlocks {
		return fmt.Errorf("image too small: %d blocks can't hold superblock, inode bitmap and inode region for %d inodes", dev.TotalBlocks, numInodes)
	}
	remaining := dev.TotalBlocks - reserved

	dataBitmapLength := uint32(1)
	for {
		numDataBlocks := remaining - dataBitmapLength
		if numDataBlocks <= dataBitmapLength*BlockSize*8 {
			break
		}
		dataBitmapLength++
	}
	if dataBitmapLength >= remaining {
		return fmt.Errorf("image too small: no room left for a data region")
	}
	numDataBlocks := remaining - dataBitmapLength
	if numDataBlocks < 1 {
		return fmt.Errorf("image too small: no room left for a data region")
	}

	inodeBitmapStart := uint32(1)
	dataBitmapStart := inodeBitmapStart + inodeBitmapLength
	inodeRegionStart := dataBitmapStart + dataBitmapLength
	dataRegionStart := inodeRegionStart + inodeRegionLength

	sb := RawSuperblock{
		Magic:             superblockMagic,
		BlockSize:         BlockSize,
		InodeBitmapStart:  inodeBitmapStart,
		InodeBitmapLength: inodeBitmapLength,
		DataBitmapStart:   dataBitmapStart,
		DataBitmapLength:  dataBitmapLength,
		InodeRegionStart:  inodeRegionStart,
		InodeRegionLength: inodeRegionLength,
		DataRegionStart:   dataRegionStart,
		DataRegionLength:  numDataBlocks,
		NumInodes:         numInodes,
		NumDataBlocks:     numDataBlocks,
	}

	var zero [BlockSize]byte
	for i := uint32(0); i < inodeBitmapLength+dataBitmapLength+inodeRegionLength+numDataBlocks; i++ {
		if err := dev.WriteBlock(block.ID(inodeBitmapStart+i), zero[:]); err != nil {
			return err
		}
	}

	inodeBitmap := bitmapRegionFromZero(inodeBitmapStart, numInodes)
	dataBitmap := bitmapRegionFromZero(dataBitmapStart, numDataBlocks)
	inodeBitmap.Set(rootInode, true)
	dataBitmap.Set(0, true)

	inodes, err := loadInodeTable(dev, inodeRegionStart, inodeRegionLength, numInodes)
	if err != nil {
		return err
	}

	root := RawInode{Type: TypeDirectory, Size: 2 * direntSize}
	root.Direct[0] = dataRegionStart
	if err := inodes.Set(rootInode, root); err != nil {
		return err
	}

	var rootBlock [BlockSize]byte
	dot := dirent{Inum: int32(rootInode)}
	dot.setName(".")
	if err := encodeDirent(rootBlock[0:direntSize], &dot); err != nil {
		return err
	}
	dotdot := dirent{Inum: int32(rootInode)}
	dotdot.setName("..")
	if err := encodeDirent(rootBlock[direntSize:2*direntSize], &dotdot); err != nil {
		return err
	}
	if err := dev.WriteBlock(block.ID(dataRegionStart), rootBlock[:]); err != nil {
		return err
	}

	if err := inodes.writeBack(dev); err != nil {
		return err
	}
	if err := inodeBitmap.writeBack(dev, inodeBitmapLength); err != nil {
		return err
	}
	if err := dataBitmap.writeBack(dev, dataBitmapLength); err != nil {
		return err
	}

	sbBytes := sb.Encode()
	return dev.WriteBlock(0, sbBytes[:])
}

func bitmapRegionFromZero(start, limit uint32) *bitmapRegion {
	length := ceilBlocks(ceilBytes(limit, 8))
	if length == 0 {
		length = 1
	}
	return &bitmapRegion{
		start: block.ID(start),
		limit: limit,
		bits:  bitmap.Bitmap(make([]byte, length*BlockSize)),
	}
}

func ceilBytes(bits uint32, bitsPerByte uint32) uint32 {
	return (bits + bitsPerByte - 1) / bitsPerByte
}

func ceilBlocks(bytes uint32) uint32 {
	if bytes == 0 {
		return 0
	}
	return (bytes + BlockSize - 1) / BlockSize
}
