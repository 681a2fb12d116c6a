package fs_test

import (
	"testing"

	"github.com/dargueta/ds3fs/dserrors"
	"github.com/dargueta/ds3fs/ds3test"
	"github.com/dargueta/ds3fs/fs"
	"github.com/stretchr/testify/require"
)

func TestCreate_IdempotentForMatchingType(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	first, err := engine.Create(0, fs.TypeRegular, "hello.txt")
	require.NoError(t, err)

	second, err := engine.Create(0, fs.TypeRegular, "hello.txt")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCreate_ConflictingTypeIsRejected(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	_, err := engine.Create(0, fs.TypeRegular, "thing")
	require.NoError(t, err)

	_, err = engine.Create(0, fs.TypeDirectory, "thing")
	require.ErrorIs(t, err, dserrors.ErrInvalidType)
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	inum, err := engine.Create(0, fs.TypeRegular, "data.bin")
	require.NoError(t, err)

	payload := make([]byte, fs.BlockSize+17)
	for i := range payload {
		payload[i] = byte(i)
	}

	n, err := engine.Write(inum, payload, len(payload))
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	readBack, err := engine.Read(inum, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, readBack)
}

func TestWrite_ShrinkFreesBlocks(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	inum, err := engine.Create(0, fs.TypeRegular, "shrink.bin")
	require.NoError(t, err)

	big := make([]byte, 3*fs.BlockSize)
	_, err = engine.Write(inum, big, len(big))
	require.NoError(t, err)

	small := []byte("tiny")
	n, err := engine.Write(inum, small, len(small))
	require.NoError(t, err)
	require.Equal(t, len(small), n)

	readBack, err := engine.Read(inum, len(small))
	require.NoError(t, err)
	require.Equal(t, small, readBack)

	// Root directory block plus the one block left to the file.
	usage, err := engine.Usage()
	require.NoError(t, err)
	require.Equal(t, uint32(2), usage.UsedBlocks)

	require.NoError(t, fs.Scrub(engine))
}

func TestUnlink_IdempotentOnMissingName(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)
	require.NoError(t, engine.Unlink(0, "does-not-exist"))
}

func TestUnlink_RejectsDotAndDotDot(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)
	require.ErrorIs(t, engine.Unlink(0, "."), dserrors.ErrUnlinkNotAllowed)
	require.ErrorIs(t, engine.Unlink(0, ".."), dserrors.ErrUnlinkNotAllowed)
}

func TestUnlink_RejectsNonEmptyDirectory(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	dirInum, err := engine.Create(0, fs.TypeDirectory, "sub")
	require.NoError(t, err)
	_, err = engine.Create(dirInum, fs.TypeRegular, "child")
	require.NoError(t, err)

	err = engine.Unlink(0, "sub")
	require.ErrorIs(t, err, dserrors.ErrDirNotEmpty)
}

func TestUnlink_SwapWithLastThenReCreateStaysConsistent(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	_, err := engine.Create(0, fs.TypeRegular, "a")
	require.NoError(t, err)
	_, err = engine.Create(0, fs.TypeRegular, "b")
	require.NoError(t, err)
	_, err = engine.Create(0, fs.TypeRegular, "c")
	require.NoError(t, err)

	require.NoError(t, engine.Unlink(0, "a"))

	_, err = engine.Lookup(0, "b")
	require.NoError(t, err)
	_, err = engine.Lookup(0, "c")
	require.NoError(t, err)
	_, err = engine.Lookup(0, "a")
	require.ErrorIs(t, err, dserrors.ErrNotFound)

	_, err = engine.Create(0, fs.TypeRegular, "a")
	require.NoError(t, err)
	_, err = engine.Lookup(0, "a")
	require.NoError(t, err)

	require.NoError(t, fs.Scrub(engine))
}

func TestLookupPath(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)

	subInum, err := engine.Create(0, fs.TypeDirectory, "sub")
	require.NoError(t, err)
	_, err = engine.Create(subInum, fs.TypeRegular, "file.txt")
	require.NoError(t, err)

	inum, err := engine.LookupPath("/sub/file.txt")
	require.NoError(t, err)

	inode, err := engine.Stat(inum)
	require.NoError(t, err)
	require.Equal(t, fs.TypeRegular, inode.Type)
}

func TestScrub_CleanFreshFormatIsClean(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 64, 16)
	require.NoError(t, fs.Scrub(engine))
}

func TestWrite_TruncatesWhenOutOfSpaceInsteadOfFailing(t *testing.T) {
	_, engine := ds3test.NewFormattedDevice(t, 16, 8)

	// 16 blocks with 8 inodes leave 12 data blocks, one of them the root
	// directory's. A 10-block filler file leaves exactly one free block.
	filler, err := engine.Create(0, fs.TypeRegular, "filler")
	require.NoError(t, err)
	_, err = engine.Write(filler, make([]byte, 10*fs.BlockSize), 10*fs.BlockSize)
	require.NoError(t, err)

	inum, err := engine.Create(0, fs.TypeRegular, "overflow")
	require.NoError(t, err)

	huge := make([]byte, fs.MaxFileSize)
	n, err := engine.Write(inum, huge, len(huge))
	require.NoError(t, err)
	require.LessOrEqual(t, n, len(huge))
	require.Equal(t, fs.BlockSize, n)
}
