// Package storage provides read access to the spreadsheet exports the
// dashboard is built from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a named source does not exist.
var ErrNotFound = errors.New("source not found")

// FileInfo contains metadata about a stored workbook export
type FileInfo struct {
	ID          uuid.UUID `json:"id"` // stable per name, derived with uuid.NewSHA1
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
}

// Storage defines the interface for workbook source lookups
type Storage interface {
	// Open returns a reader for the named source. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error)

	// Stat returns metadata for a source without opening it
	Stat(ctx context.Context, name string) (*FileInfo, error)

	// List returns every workbook export the store knows about
	List(ctx context.Context) ([]*FileInfo, error)
}

// StorageType identifies the storage backend
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
)

// Config holds storage configuration
type Config struct {
	Type      StorageType
	LocalPath string
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// sourceNamespace scopes the name-derived file IDs.
var sourceNamespace = uuid.MustParse("6f1c2a8e-4b0d-4c59-9a57-3d8e0f6b2c11")

func sourceID(name string) uuid.UUID {
	return uuid.NewSHA1(sourceNamespace, []byte(name))
}
