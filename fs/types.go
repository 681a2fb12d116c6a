package fs

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// InodeType identifies what kind of object an inode describes.
type InodeType uint8

const (
	// TypeFree marks an inode slot as unused.
	TypeFree InodeType = 0
	// TypeRegular marks an inode as a regular file.
	TypeRegular InodeType = 1
	// TypeDirectory marks an inode as a directory.
	TypeDirectory InodeType = 2
)

// RawSuperblock is the on-disk layout of block 0. All fields are
// little-endian, following the encoding convention
// file_systems/unixv1/format.go uses for every other on-disk record in
// the teacher repo.
type RawSuperblock struct {
	Magic             uint32
	BlockSize         uint32
	InodeBitmapStart  uint32
	InodeBitmapLength uint32
	DataBitmapStart   uint32
	DataBitmapLength  uint32
	InodeRegionStart  uint32
	InodeRegionLength uint32
	DataRegionStart   uint32
	DataRegionLength  uint32
	NumInodes         uint32
	NumDataBlocks     uint32
}

// Encode serializes the superblock into a single zero-padded block.
func (sb *RawSuperblock) Encode() [BlockSize]byte {
	var block [BlockSize]byte
	writer := bytewriter.New(block[:])
	_ = binary.Write(writer, binary.LittleEndian, sb)
	return block
}

// DecodeSuperblock reads a RawSuperblock out of the first bytes of block 0.
func DecodeSuperblock(data []byte) (RawSuperblock, error) {
	var sb RawSuperblock
	reader := bytes.NewReader(data)
	if err := binary.Read(reader, binary.LittleEndian, &sb); err != nil {
		return RawSuperblock{}, err
	}
	return sb, nil
}

// RawInode is the fixed-size on-disk inode record.
type RawInode struct {
	Type     InodeType
	Reserved [3]byte
	Size     uint64
	Direct   [DirectPtrs]uint32
}

// NumBlocksUsed returns ceil(Size / BlockSize), the number of entries in
// Direct that are meaningful.
func (inode *RawInode) NumBlocksUsed() int {
	return blocksForSize(inode.Size)
}

func blocksForSize(size uint64) int {
	return int((size + BlockSize - 1) / BlockSize)
}

// encodeInode writes one inode record into `dst`, which must be at least
// inodeRecordSize bytes.
func encodeInode(dst []byte, inode *RawInode) error {
	writer := bytewriter.New(dst[:inodeRecordSize])
	return binary.Write(writer, binary.LittleEndian, inode)
}

// decodeInode reads one inode record out of `src`, which must be at least
// inodeRecordSize bytes.
func decodeInode(src []byte) (RawInode, error) {
	var inode RawInode
	reader := bytes.NewReader(src[:inodeRecordSize])
	if err := binary.Read(reader, binary.LittleEndian, &inode); err != nil {
		return RawInode{}, err
	}
	return inode, nil
}

// dirent is the fixed-width directory entry record.
type dirent struct {
	Inum int32
	Name [DirEntNameSize]byte
}

// nameString returns the NUL-terminated name as a Go string.
func (d *dirent) nameString() string {
	n := bytes.IndexByte(d.Name[:], 0)
	if n < 0 {
		n = len(d.Name)
	}
	return string(d.Name[:n])
}

// setName copies `name` into the entry's fixed-width name field, NUL
// padding the remainder. Caller must have already validated the length.
func (d *dirent) setName(name string) {
	for i := range d.Name {
		d.Name[i] = 0
	}
	copy(d.Name[:], name)
}

func encodeDirent(dst []byte, d *dirent) error {
	writer := bytewriter.New(dst[:direntSize])
	return binary.Write(writer, binary.LittleEndian, d)
}

func decodeDirent(src []byte) (dirent, error) {
	var d dirent
	reader := bytes.NewReader(src[:direntSize])
	if err := binary.Read(reader, binary.LittleEndian, &d); err != nil {
		return dirent{}, err
	}
	return d, nil
}
