// Package prefs keeps small dashboard preferences between runs.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/honganh1206/convodash/schema"
	"github.com/tidwall/buntdb"
)

const keyPageSize = "dashboard:page_size"

type Store struct {
	db *buntdb.DB
}

// Open opens the preference file at path, creating it if needed. ":memory:"
// keeps everything in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create prefs directory: %w", err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PageSize returns the saved page size. ok is false when nothing valid has
// been saved.
func (s *Store) PageSize() (size int, ok bool, err error) {
	err = s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(keyPageSize)
		if err != nil {
			return err
		}
		size, err = strconv.Atoi(v)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !schema.ValidPageSize(size) {
		return 0, false, nil
	}
	return size, true, nil
}

func (s *Store) SetPageSize(n int) error {
	if !schema.ValidPageSize(n) {
		return fmt.Errorf("invalid page size %d", n)
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(keyPageSize, strconv.Itoa(n), nil)
		return err
	})
}
