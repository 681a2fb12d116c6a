package fs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Scrub walks every inode and directory reachable from the root and
// reports every invariant violation it finds, rather than stopping at
// the first one. Grounded on the teacher repo's general validate-don't-
// trust style in drivers/common/blockdevice.go's bounds checks,
// generalized here into a whole-image consistency sweep; go-multierror
// aggregates the findings the way it aggregates provider errors in a
// typical Terraform-style diagnostics report.
func Scrub(e *Engine) error {
	var result *multierror.Error

	inodeBitmap, err := e.loadInodeBitmap()
	if err != nil {
		return err
	}
	dataBitmap, err := e.loadDataBitmap()
	if err != nil {
		return err
	}
	inodes, err := e.loadInodes()
	if err != nil {
		return err
	}

	referencedData := make(map[uint32]uint32) // region-relative index -> inode that claims it
	visitedInodes := make(map[uint32]bool)

	var walk func(inum uint32, parent uint32) error
	walk = func(inum uint32, parent uint32) error {
		if visitedInodes[inum] {
			return nil
		}
		visitedInodes[inum] = true

		if !inodeBitmap.Get(inum) {
			result = multierror.Append(result, fmt.Errorf("inode %d: reachable but marked free in inode bitmap", inum))
			return nil
		}

		inode, err := inodes.Get(inum)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("inode %d: %w", inum, err))
			return nil
		}

		used := inode.NumBlocksUsed()
		if used > DirectPtrs {
			result = multierror.Append(result, fmt.Errorf("inode %d: size %d needs %d blocks, more than %d direct pointers", inum, inode.Size, used, DirectPtrs))
			used = DirectPtrs
		}

		for i := 0; i < used; i++ {
			rel := e.regionRelative(inode.Direct[i])
			if rel >= e.sb.NumDataBlocks {
				result = multierror.Append(result, fmt.Errorf("inode %d: direct pointer %d (block %d) is out of the data region", inum, i, inode.Direct[i]))
				continue
			}
			if !dataBitmap.Get(rel) {
				result = multierror.Append(result, fmt.Errorf("inode %d: data block %d is in use but marked free in data bitmap", inum, inode.Direct[i]))
			}
			if owner, seen := referencedData[rel]; seen {
				result = multierror.Append(result, fmt.Errorf("data block %d is claimed by both inode %d and inode %d", inode.Direct[i], owner, inum))
			} else {
				referencedData[rel] = inum
			}
		}

		if inode.Type != TypeDirectory {
			return nil
		}

		numEntries := uint32(inode.Size / direntSize)
		blocks, err := readDirectBlocks(e.dev, inode.Direct, used)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("inode %d: %w", inum, err))
			return nil
		}

		sawDot, sawDotDot := false, false
		for i := uint32(0); i < numEntries; i++ {
			d, err := direntAt(blocks, i)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("inode %d: entry %d: %w", inum, i, err))
				continue
			}
			switch d.nameString() {
			case ".":
				sawDot = true
				if uint32(d.Inum) != inum {
					result = multierror.Append(result, fmt.Errorf("inode %d: \".\" points to inode %d instead of itself", inum, d.Inum))
				}
			case "..":
				sawDotDot = true
				if uint32(d.Inum) != parent {
					result = multierror.Append(result, fmt.Errorf("inode %d: \"..\" points to inode %d instead of parent %d", inum, d.Inum, parent))
				}
			default:
				if err := walk(uint32(d.Inum), inum); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
		if !sawDot || !sawDotDot {
			result = multierror.Append(result, fmt.Errorf("inode %d: directory is missing \".\" or \"..\"", inum))
		}
		return nil
	}

	if err := walk(rootInode, rootInode); err != nil {
		result = multierror.Append(result, err)
	}

	for i := uint32(0); i < e.sb.NumInodes; i++ {
		if inodeBitmap.Get(i) && !visitedInodes[i] {
			result = multierror.Append(result, fmt.Errorf("inode %d: marked in-use in the inode bitmap but unreachable from the root", i))
		}
	}

	return result.ErrorOrNil()
}
