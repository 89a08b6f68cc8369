package memorystorage

import (
	"github.com/patric-chuzhbe/linkshrink/internal/session/jsonfile"
)

// MemoryStorage keeps session values for the lifetime of the process only.
type MemoryStorage struct {
	*jsonfile.JSONFile
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONFile: jsonfile.NewInMemory(),
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
