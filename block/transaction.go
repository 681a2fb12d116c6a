package block

import "github.com/boljen/go-bitmap"

// Transaction is a device-level scope that snapshots the pre-image of any
// block written while the scope is open. Commit discards the snapshots;
// Rollback restores them. It generalizes the dirty-block bitmap tracking
// in drivers/common/blockcache/blockcache.go (there used to know which
// blocks need flushing; here used to know which blocks need a pre-image
// captured before the first write touches them).
type Transaction struct {
	device    *Device
	preimages map[ID][Size]byte
	touched   bitmap.Bitmap
}

// snapshotOnce records the pre-image of `index` the first time it is
// written within this transaction's scope.
func (t *Transaction) snapshotOnce(index ID, d *Device) error {
	if t.touched.Get(int(index)) {
		return nil
	}

	before, err := d.ReadBlock(index)
	if err != nil {
		return err
	}
	t.preimages[index] = before
	t.touched.Set(int(index), true)
	return nil
}

// Commit closes the transaction successfully, discarding all snapshots.
func (t *Transaction) Commit() {
	t.device.txn = nil
}

// Rollback restores every block touched during the transaction to its
// pre-transaction contents, then closes the transaction.
func (t *Transaction) Rollback() error {
	// Clear the open transaction first so the restoring WriteBlock calls
	// below go straight to the stream instead of re-snapshotting.
	t.device.txn = nil

	for index, preimage := range t.preimages {
		if err := t.device.WriteBlock(index, preimage[:]); err != nil {
			return err
		}
	}
	return nil
}
