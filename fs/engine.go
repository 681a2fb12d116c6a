package fs

import (
	"strings"

	"github.com/dargueta/ds3fs/block"
	"github.com/dargueta/ds3fs/dserrors"
)

// Engine is the in-memory view of a mounted image's metadata and the
// entry point for every file system operation. It holds only the
// superblock, which is immutable after Format; every operation reloads
// the bitmaps and inode table it needs directly from the device, mutates
// them, and writes the whole region back before returning. This mirrors
// the spec's "every mutation writes the full affected region back"
// contract literally and keeps Engine safe to reuse across transactions,
// including after a Rollback.
//
// Grounded on drivers/unixv1/driver.go's UnixV1Driver, generalized from a
// long-lived in-memory inode/bitmap cache to one reloaded per operation.
type Engine struct {
	dev *block.Device
	sb  RawSuperblock
}

func (e *Engine) loadInodeBitmap() (*bitmapRegion, error) {
	return loadBitmapRegion(e.dev, block.ID(e.sb.InodeBitmapStart), e.sb.InodeBitmapLength, e.sb.NumInodes)
}

func (e *Engine) loadDataBitmap() (*bitmapRegion, error) {
	return loadBitmapRegion(e.dev, block.ID(e.sb.DataBitmapStart), e.sb.DataBitmapLength, e.sb.NumDataBlocks)
}

func (e *Engine) loadInodes() (*inodeTable, error) {
	return loadInodeTable(e.dev, block.ID(e.sb.InodeRegionStart), e.sb.InodeRegionLength, e.sb.NumInodes)
}

func (e *Engine) dataBlockID(regionRelative uint32) uint32 {
	return e.sb.DataRegionStart + regionRelative
}

func (e *Engine) regionRelative(abs uint32) uint32 {
	return abs - e.sb.DataRegionStart
}

// Stat returns the raw inode record for `inum`.
func (e *Engine) Stat(inum uint32) (RawInode, error) {
	if inum >= e.sb.NumInodes {
		return RawInode{}, dserrors.ErrInvalidInode
	}
	inodes, err := e.loadInodes()
	if err != nil {
		return RawInode{}, err
	}
	return inodes.Get(inum)
}

// liveDirectory loads and validates that `inum` names a directory
// currently marked in-use.
func (e *Engine) liveDirectory(inum uint32) (RawInode, error) {
	if inum >= e.sb.NumInodes {
		return RawInode{}, dserrors.ErrInvalidInode
	}
	inodeBitmap, err := e.loadInodeBitmap()
	if err != nil {
		return RawInode{}, err
	}
	if !inodeBitmap.Get(inum) {
		return RawInode{}, dserrors.ErrInvalidInode
	}
	inode, err := e.Stat(inum)
	if err != nil {
		return RawInode{}, err
	}
	if inode.Type != TypeDirectory {
		return RawInode{}, dserrors.ErrInvalidInode
	}
	return inode, nil
}

// Lookup resolves `name` within directory `parent`, returning its inode
// number. Returns ErrNotFound if no entry by that name exists.
func (e *Engine) Lookup(parent uint32, name string) (uint32, error) {
	parentInode, err := e.liveDirectory(parent)
	if err != nil {
		return 0, err
	}

	numEntries := uint32(parentInode.Size / direntSize)
	blocks, err := readDirectBlocks(e.dev, parentInode.Direct, parentInode.NumBlocksUsed())
	if err != nil {
		return 0, err
	}

	_, d, found, err := findDirentByName(blocks, numEntries, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, dserrors.ErrNotFound
	}
	return uint32(d.Inum), nil
}

// LookupPath resolves a slash-separated path from the root directory.
func (e *Engine) LookupPath(path string) (uint32, error) {
	inum := uint32(rootInode)
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		next, err := e.Lookup(inum, part)
		if err != nil {
			return 0, err
		}
		inum = next
	}
	return inum, nil
}

// Read returns the first `size` bytes of a regular file's contents.
func (e *Engine) Read(inum uint32, size int) ([]byte, error) {
	inode, err := e.Stat(inum)
	if err != nil {
		return nil, err
	}
	if size < 0 || uint64(size) > inode.Size {
		return nil, dserrors.ErrInvalidSize
	}

	out := make([]byte, size)
	numBlocks := blocksForSize(uint64(size))
	for i := 0; i < numBlocks; i++ {
		blk, err := e.dev.ReadBlock(block.ID(inode.Direct[i]))
		if err != nil {
			return nil, err
		}
		start := i * BlockSize
		n := BlockSize
		if start+n > size {
			n = size - start
		}
		copy(out[start:start+n], blk[:n])
	}
	return out, nil
}

// Write replaces a regular file's entire contents with the first `size`
// bytes of `data`. If the disk runs out of free blocks mid-allocation,
// the write is truncated to however much fits rather than failing, per
// the spec's write-never-fails-for-space contract.
func (e *Engine) Write(inum uint32, data []byte, size int) (int, error) {
	inode, err := e.Stat(inum)
	if err != nil {
		return 0, err
	}
	if inode.Type != TypeRegular {
		return 0, dserrors.ErrInvalidType
	}
	if size < 0 || size > MaxFileSize {
		return 0, dserrors.ErrInvalidSize
	}

	dataBitmap, err := e.loadDataBitmap()
	if err != nil {
		return 0, err
	}

	oldBlocks := inode.NumBlocksUsed()
	wantBlocks := blocksForSize(uint64(size))

	if wantBlocks < oldBlocks {
		for i := wantBlocks; i < oldBlocks; i++ {
			dataBitmap.Set(e.regionRelative(inode.Direct[i]), false)
			inode.Direct[i] = 0
		}
	} else if wantBlocks > oldBlocks {
		allocated := oldBlocks
		for allocated < wantBlocks {
			idx, ok := dataBitmap.FindFirstClear()
			if !ok {
				break
			}
			dataBitmap.Set(idx, true)
			inode.Direct[allocated] = e.dataBlockID(idx)
			allocated++
		}
		if allocated < wantBlocks {
			wantBlocks = allocated
			size = allocated * BlockSize
		}
	}

	buf := make([]byte, wantBlocks*BlockSize)
	n := size
	if n > len(data) {
		n = len(data)
	}
	copy(buf, data[:n])

	for i := 0; i < wantBlocks; i++ {
		if err := e.dev.WriteBlock(block.ID(inode.Direct[i]), buf[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return 0, err
		}
	}

	inode.Size = uint64(size)

	inodes, err := e.loadInodes()
	if err != nil {
		return 0, err
	}
	if err := inodes.Set(inum, inode); err != nil {
		return 0, err
	}
	if err := inodes.writeBack(e.dev); err != nil {
		return 0, err
	}
	if err := dataBitmap.writeBack(e.dev, e.sb.DataBitmapLength); err != nil {
		return 0, err
	}
	return size, nil
}

// Create adds an entry named `name` of type `typ` to directory `parent`.
// If an entry by that name already exists and matches `typ`, Create
// returns its inode number without modifying anything (idempotent
// create). If it exists with a different type, ErrInvalidType.
func (e *Engine) Create(parent uint32, typ InodeType, name string) (uint32, error) {
	if len(name) == 0 || len(name) > DirEntNameSize {
		return 0, dserrors.ErrInvalidName
	}
	if typ != TypeRegular && typ != TypeDirectory {
		return 0, dserrors.ErrInvalidType
	}

	parentInode, err := e.liveDirectory(parent)
	if err != nil {
		return 0, err
	}

	existing, err := e.Lookup(parent, name)
	if err == nil {
		existingInode, err := e.Stat(existing)
		if err != nil {
			return 0, err
		}
		if existingInode.Type == typ {
			return existing, nil
		}
		return 0, dserrors.ErrInvalidType
	} else if err != dserrors.ErrNotFound {
		return 0, err
	}

	inodeBitmap, err := e.loadInodeBitmap()
	if err != nil {
		return 0, err
	}
	newInum, ok := inodeBitmap.FindFirstClear()
	if !ok {
		return 0, dserrors.ErrNotEnoughSpace
	}

	dataBitmap, err := e.loadDataBitmap()
	if err != nil {
		return 0, err
	}

	numEntries := uint32(parentInode.Size / direntSize)
	oldParentBlocks := parentInode.NumBlocksUsed()
	needNewParentBlock := numEntries%entriesPerBlock == 0

	if needNewParentBlock && oldParentBlocks >= DirectPtrs {
		return 0, dserrors.ErrNotEnoughSpace
	}

	var newParentBlockAbs uint32
	if needNewParentBlock {
		idx, ok := dataBitmap.FindFirstClear()
		if !ok {
			return 0, dserrors.ErrNotEnoughSpace
		}
		dataBitmap.Set(idx, true)
		newParentBlockAbs = e.dataBlockID(idx)
	}

	var newDirBlockAbs uint32
	if typ == TypeDirectory {
		idx, ok := dataBitmap.FindFirstClear()
		if !ok {
			return 0, dserrors.ErrNotEnoughSpace
		}
		dataBitmap.Set(idx, true)
		newDirBlockAbs = e.dataBlockID(idx)
	}

	inodeBitmap.Set(newInum, true)

	newInode := RawInode{Type: typ}
	if typ == TypeDirectory {
		newInode.Direct[0] = newDirBlockAbs
		newInode.Size = 2 * direntSize

		var blk [BlockSize]byte
		dot := dirent{Inum: int32(newInum)}
		dot.setName(".")
		if err := encodeDirent(blk[0:direntSize], &dot); err != nil {
			return 0, err
		}
		dotdot := dirent{Inum: int32(parent)}
		dotdot.setName("..")
		if err := encodeDirent(blk[direntSize:2*direntSize], &dotdot); err != nil {
			return 0, err
		}
		if err := e.dev.WriteBlock(block.ID(newDirBlockAbs), blk[:]); err != nil {
			return 0, err
		}
	}

	parentBlocks, err := readDirectBlocks(e.dev, parentInode.Direct, oldParentBlocks)
	if err != nil {
		return 0, err
	}
	if needNewParentBlock {
		parentInode.Direct[oldParentBlocks] = newParentBlockAbs
		parentBlocks = append(parentBlocks, [BlockSize]byte{})
	}

	newEntry := dirent{Inum: int32(newInum)}
	newEntry.setName(name)
	if err := setDirentAt(parentBlocks, numEntries, &newEntry); err != nil {
		return 0, err
	}
	parentInode.Size += direntSize

	touchedBlockIdx := numEntries / entriesPerBlock
	if err := e.dev.WriteBlock(block.ID(parentInode.Direct[touchedBlockIdx]), parentBlocks[touchedBlockIdx][:]); err != nil {
		return 0, err
	}

	inodes, err := e.loadInodes()
	if err != nil {
		return 0, err
	}
	if err := inodes.Set(newInum, newInode); err != nil {
		return 0, err
	}
	if err := inodes.Set(parent, parentInode); err != nil {
		return 0, err
	}
	if err := inodes.writeBack(e.dev); err != nil {
		return 0, err
	}
	if err := inodeBitmap.writeBack(e.dev, e.sb.InodeBitmapLength); err != nil {
		return 0, err
	}
	if err := dataBitmap.writeBack(e.dev, e.sb.DataBitmapLength); err != nil {
		return 0, err
	}

	return newInum, nil
}

// Unlink removes the entry named `name` from directory `parent`. It is
// idempotent: unlinking a name that doesn't exist succeeds without
// effect. Unlinking "." or ".." is always rejected with
// ErrUnlinkNotAllowed. Unlinking a non-empty directory is rejected with
// ErrDirNotEmpty.
func (e *Engine) Unlink(parent uint32, name string) error {
	if len(name) == 0 || len(name) > DirEntNameSize {
		return dserrors.ErrInvalidName
	}
	if name == "." || name == ".." {
		return dserrors.ErrUnlinkNotAllowed
	}

	parentInode, err := e.liveDirectory(parent)
	if err != nil {
		return err
	}

	numEntries := uint32(parentInode.Size / direntSize)
	oldParentBlocks := parentInode.NumBlocksUsed()
	parentBlocks, err := readDirectBlocks(e.dev, parentInode.Direct, oldParentBlocks)
	if err != nil {
		return err
	}

	targetIdx, targetEntry, found, err := findDirentByName(parentBlocks, numEntries, name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	targetInum := uint32(targetEntry.Inum)

	targetInode, err := e.Stat(targetInum)
	if err != nil {
		return err
	}
	if targetInode.Type == TypeDirectory && targetInode.Size > 2*direntSize {
		return dserrors.ErrDirNotEmpty
	}

	lastIdx := numEntries - 1
	if targetIdx != lastIdx {
		lastEntry, err := direntAt(parentBlocks, lastIdx)
		if err != nil {
			return err
		}
		if err := setDirentAt(parentBlocks, targetIdx, &lastEntry); err != nil {
			return err
		}
	}
	numEntries--

	dataBitmap, err := e.loadDataBitmap()
	if err != nil {
		return err
	}

	newParentSize := uint64(numEntries) * direntSize
	newParentBlocks := blocksForSize(newParentSize)
	if newParentBlocks < oldParentBlocks {
		freedAbs := parentInode.Direct[newParentBlocks]
		dataBitmap.Set(e.regionRelative(freedAbs), false)
		parentInode.Direct[newParentBlocks] = 0
	}
	parentInode.Size = newParentSize

	for i := 0; i < targetInode.NumBlocksUsed(); i++ {
		dataBitmap.Set(e.regionRelative(targetInode.Direct[i]), false)
	}

	inodeBitmap, err := e.loadInodeBitmap()
	if err != nil {
		return err
	}
	inodeBitmap.Set(targetInum, false)
	targetInode.Type = TypeFree
	targetInode.Size = 0
	targetInode.Direct = [DirectPtrs]uint32{}

	for i := 0; i < newParentBlocks; i++ {
		if err := e.dev.WriteBlock(block.ID(parentInode.Direct[i]), parentBlocks[i][:]); err != nil {
			return err
		}
	}

	inodes, err := e.loadInodes()
	if err != nil {
		return err
	}
	if err := inodes.Set(parent, parentInode); err != nil {
		return err
	}
	if err := inodes.Set(targetInum, targetInode); err != nil {
		return err
	}
	if err := inodes.writeBack(e.dev); err != nil {
		return err
	}
	if err := inodeBitmap.writeBack(e.dev, e.sb.InodeBitmapLength); err != nil {
		return err
	}
	if err := dataBitmap.writeBack(e.dev, e.sb.DataBitmapLength); err != nil {
		return err
	}
	return nil
}
