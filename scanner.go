package dbmove

import (
	"errors"
	"os"
)

// scan enumerates the non-recursive contents of dir. A missing directory is
// reported as ErrDirectoryMissing, propagated unchanged — it is the one
// error in this engine that callers are expected to check before any
// database work happens.
func scan(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newError(KindDirectoryMissing, dir, err)
		}
		return nil, err
	}
	return entries, nil
}
