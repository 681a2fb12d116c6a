// Package service orchestrates the three externally visible operations
// (read/list, put, delete) on top of the fs engine, wrapping each one in
// a single device transaction so a failure midway through leaves the
// image exactly as it was found.
//
// Grounded on drivers/common/basedriver/driver.go's pattern of a thin
// orchestration layer sitting in front of the lower-level block and
// inode primitives; the transaction-per-call wrapping is new (the
// teacher has no journaling), generalized from block.Transaction.
package service

import (
	"github.com/dargueta/ds3fs/block"
	"github.com/dargueta/ds3fs/dserrors"
	"github.com/dargueta/ds3fs/fs"
)

// Entry describes one name in a directory listing.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size uint64 `json:"size"`
}

// Service is the orchestration layer in front of a mounted image.
type Service struct {
	dev    *block.Device
	engine *fs.Engine
}

// New wraps an already-mounted engine and the device it was mounted
// from.
func New(dev *block.Device, engine *fs.Engine) *Service {
	return &Service{dev: dev, engine: engine}
}

// withTransaction runs fn inside a device transaction, rolling back on
// any error and committing only once fn has fully succeeded. Grounded on
// the teacher's guarded-defer cleanup shape (a "committed"/"closed" flag
// checked in a deferred closure) used for resource cleanup elsewhere in
// the teacher's driver layer.
func (s *Service) withTransaction(fn func() error) (err error) {
	txn, err := s.dev.Begin()
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rerr := txn.Rollback(); rerr != nil && err == nil {
				err = rerr
			}
		}
	}()

	if err = fn(); err != nil {
		return err
	}
	txn.Commit()
	committed = true
	return nil
}

// Get resolves `path`. If it names a directory, it returns that
// directory's entries; otherwise it returns the file's contents.
func (s *Service) Get(path string) ([]byte, []Entry, error) {
	var (
		contents []byte
		entries  []Entry
	)
	err := s.withTransaction(func() error {
		inum, err := s.engine.LookupPath(path)
		if err != nil {
			return err
		}
		inode, err := s.engine.Stat(inum)
		if err != nil {
			return err
		}
		if inode.Type == fs.TypeDirectory {
			entries, err = s.listDirectory(inum)
			return err
		}
		contents, err = s.engine.Read(inum, int(inode.Size))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return contents, entries, nil
}

func (s *Service) listDirectory(inum uint32) ([]Entry, error) {
	raw, err := s.engine.ListDirectory(inum)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, d := range raw {
		childInode, err := s.engine.Stat(d.Inum)
		if err != nil {
			return nil, err
		}
		typ := "file"
		if childInode.Type == fs.TypeDirectory {
			typ = "directory"
		}
		entries = append(entries, Entry{Name: d.Name, Type: typ, Size: childInode.Size})
	}
	return entries, nil
}

// Put creates the file or directory named by `path`, following the
// trailing-slash convention to tell directories from files, creating any
// missing intermediate directories along the way. For a file, `body` is
// written as its entire contents.
func (s *Service) Put(path string, body []byte) error {
	parts, trailingSlash := splitPath(path)
	if len(parts) == 0 {
		return dserrors.ErrInvalidName
	}

	return s.withTransaction(func() error {
		parent := uint32(0)
		for _, name := range parts[:len(parts)-1] {
			inum, err := s.engine.Create(parent, fs.TypeDirectory, name)
			if err != nil {
				return err
			}
			parent = inum
		}

		leafName := parts[len(parts)-1]
		leafType := fs.TypeRegular
		if trailingSlash {
			leafType = fs.TypeDirectory
		}
		inum, err := s.engine.Create(parent, leafType, leafName)
		if err != nil {
			return err
		}
		if leafType == fs.TypeRegular {
			_, err := s.engine.Write(inum, body, len(body))
			return err
		}
		return nil
	})
}

// Delete removes the entry named by `path`. It is idempotent for the final
// name: deleting a missing entry inside an existing directory succeeds
// without effect. A missing intermediate directory returns ErrNotFound.
func (s *Service) Delete(path string) error {
	parts, _ := splitPath(path)
	if len(parts) == 0 {
		return dserrors.ErrUnlinkNotAllowed
	}

	return s.withTransaction(func() error {
		parentPath := parts[:len(parts)-1]
		name := parts[len(parts)-1]

		parent := uint32(0)
		for _, component := range parentPath {
			inum, err := s.engine.Lookup(parent, component)
			if err != nil {
				return err
			}
			parent = inum
		}
		return s.engine.Unlink(parent, name)
	})
}
