package block_test

import (
	"testing"

	"github.com/dargueta/ds3fs/block"
	"github.com/dargueta/ds3fs/dserrors"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newDevice(t *testing.T, totalBlocks uint32) *block.Device {
	t.Helper()
	raw := make([]byte, int(totalBlocks)*block.Size)
	stream := bytesextra.NewReadWriteSeeker(raw)
	return block.New(stream, totalBlocks)
}

func TestReadWriteBlockRoundTrip(t *testing.T) {
	dev := newDevice(t, 4)

	var data [block.Size]byte
	for i := range data {
		data[i] = byte(i % 251)
	}

	require.NoError(t, dev.WriteBlock(2, data[:]))

	readBack, err := dev.ReadBlock(2)
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}

func TestWriteBlockOutOfRange(t *testing.T) {
	dev := newDevice(t, 4)
	var data [block.Size]byte
	require.Error(t, dev.WriteBlock(4, data[:]))
}

func TestTransactionCommitKeepsWrites(t *testing.T) {
	dev := newDevice(t, 4)

	txn, err := dev.Begin()
	require.NoError(t, err)

	var data [block.Size]byte
	data[0] = 0xAB
	require.NoError(t, dev.WriteBlock(1, data[:]))
	txn.Commit()

	readBack, err := dev.ReadBlock(1)
	require.NoError(t, err)
	require.Equal(t, data, readBack)
	require.False(t, dev.InTransaction())
}

func TestTransactionRollbackRestoresPreimage(t *testing.T) {
	dev := newDevice(t, 4)

	var before [block.Size]byte
	before[0] = 0x11
	require.NoError(t, dev.WriteBlock(1, before[:]))

	txn, err := dev.Begin()
	require.NoError(t, err)

	var after [block.Size]byte
	after[0] = 0x22
	require.NoError(t, dev.WriteBlock(1, after[:]))

	require.NoError(t, txn.Rollback())

	readBack, err := dev.ReadBlock(1)
	require.NoError(t, err)
	require.Equal(t, before, readBack)
	require.False(t, dev.InTransaction())
}

func TestBeginRejectsNestedTransactions(t *testing.T) {
	dev := newDevice(t, 4)

	_, err := dev.Begin()
	require.NoError(t, err)

	_, err = dev.Begin()
	require.ErrorIs(t, err, dserrors.ErrAlreadyInProgress)
}
