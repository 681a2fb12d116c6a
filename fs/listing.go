package fs

// DirEntry is one name/inode pair out of a directory listing, exposed
// without the fixed-width on-disk encoding.
type DirEntry struct {
	Name string
	Inum uint32
}

// ListDirectory returns every entry in directory `inum` except "." and
// "..".
func (e *Engine) ListDirectory(inum uint32) ([]DirEntry, error) {
	inode, err := e.liveDirectory(inum)
	if err != nil {
		return nil, err
	}

	numEntries := uint32(inode.Size / direntSize)
	blocks, err := readDirectBlocks(e.dev, inode.Direct, inode.NumBlocksUsed())
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, numEntries)
	for i := uint32(0); i < numEntries; i++ {
		d, err := direntAt(blocks, i)
		if err != nil {
			return nil, err
		}
		name := d.nameString()
		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, DirEntry{Name: name, Inum: uint32(d.Inum)})
	}
	return entries, nil
}
