// Package cliutil holds the small amount of file-opening boilerplate
// shared by the cmd/ds3* tools, so each tool's main.go can stay a thin
// urfave/cli/v2 wrapper the way cmd/main.go is in the teacher repo.
package cliutil

import (
	"fmt"
	"os"

	"github.com/dargueta/ds3fs/block"
)

// OpenDevice opens an existing image file at `path` and wraps it as a
// block.Device sized to the file's length.
func OpenDevice(path string) (*os.File, *block.Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size()%block.Size != 0 {
		f.Close()
		return nil, nil, fmt.Errorf("%s: size %d is not a multiple of the block size %d", path, info.Size(), block.Size)
	}

	totalBlocks := uint32(info.Size() / block.Size)
	return f, block.New(f, totalBlocks), nil
}

// CreateDevice creates a new image file at `path` with exactly
// `totalBlocks` blocks, all zeroed.
func CreateDevice(path string, totalBlocks uint32) (*os.File, *block.Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, err
	}
	if err := f.Truncate(int64(totalBlocks) * block.Size); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, block.New(f, totalBlocks), nil
}
