package fs

import "github.com/dargueta/ds3fs/block"

// BlockSize is the fixed size of a disk block, in bytes.
const BlockSize = block.Size

// DirectPtrs is the number of direct block pointers an inode carries.
// There are no indirect blocks in this file system, so this also bounds
// the maximum file size.
const DirectPtrs = 12

// MaxFileSize is the largest a regular file's contents can be.
const MaxFileSize = DirectPtrs * BlockSize

// DirEntNameSize is the maximum number of bytes in a directory entry's
// name, not counting any NUL terminator.
const DirEntNameSize = 28

// direntSize is the on-disk size of one directory entry record.
const direntSize = 4 + DirEntNameSize

// entriesPerBlock is the number of directory entries packed into a single
// data block.
const entriesPerBlock = BlockSize / direntSize

// inodeRecordSize is the on-disk size of one inode record.
const inodeRecordSize = 1 + 3 + 8 + DirectPtrs*4

// rootInode is the inode number of the file system root directory.
const rootInode = 0

// superblockMagic identifies a formatted ds3 image.
const superblockMagic = 0x44533346 // "DS3F"
