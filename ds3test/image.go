// Package ds3test provides in-memory formatted images for tests across
// the module, so package tests don't each need to hand-roll a stream and
// call fs.Format themselves.
//
// Grounded on testing/images.go's LoadDiskImage: both hand a test an
// io.ReadWriteSeeker backed by an in-memory buffer via
// github.com/xaionaro-go/bytesextra, sized to hold exactly the image
// requested.
package ds3test

import (
	"testing"

	"github.com/dargueta/ds3fs/block"
	"github.com/dargueta/ds3fs/fs"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// NewFormattedDevice builds a `totalBlocks`-block in-memory device, formats
// it with `numInodes` inode slots, and mounts it, failing the test on any
// error.
func NewFormattedDevice(t *testing.T, totalBlocks, numInodes uint32) (*block.Device, *fs.Engine) {
	t.Helper()

	raw := make([]byte, int(totalBlocks)*block.Size)
	stream := bytesextra.NewReadWriteSeeker(raw)
	dev := block.New(stream, totalBlocks)

	require.NoError(t, fs.Format(dev, numInodes))

	engine, err := fs.Mount(dev)
	require.NoError(t, err)

	return dev, engine
}
