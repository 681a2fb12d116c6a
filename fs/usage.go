package fs

// Usage summarizes how much of an image's inode and data block capacity
// is in use.
type Usage struct {
	UsedInodes  uint32
	TotalInodes uint32
	UsedBlocks  uint32
	TotalBlocks uint32
}

// Usage computes the current inode and data block occupancy.
func (e *Engine) Usage() (Usage, error) {
	inodeBitmap, err := e.loadInodeBitmap()
	if err != nil {
		return Usage{}, err
	}
	dataBitmap, err := e.loadDataBitmap()
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		UsedInodes:  inodeBitmap.CountSet(),
		TotalInodes: e.sb.NumInodes,
		UsedBlocks:  dataBitmap.CountSet(),
		TotalBlocks: e.sb.NumDataBlocks,
	}, nil
}
