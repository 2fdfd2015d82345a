package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/coilsim/internal/storage"
	"github.com/san-kum/coilsim/internal/storage/sqlite"
)

const sqliteFile = "runs.db"

// openStorage creates and initializes the configured backend.
func (a *app) openStorage() (storage.Backend, error) {
	kind := a.settings.GetString("store")
	dir := a.settings.GetString("data")

	backend, err := createStorageBackend(kind, dir)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		return nil, err
	}
	a.log.Debug().Str("store", kind).Str("data", dir).Msg("storage ready")
	return backend, nil
}

func createStorageBackend(kind, dir string) (storage.Backend, error) {
	switch kind {
	case "file", "":
		return storage.New(dir), nil
	case "sqlite":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		return sqlite.New(filepath.Join(dir, sqliteFile)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (file|sqlite)", kind)
	}
}
