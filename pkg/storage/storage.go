package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// FileInfo describes a stored file. ModTime drives the report retention sweep.
type FileInfo struct {
	Path    string
	ModTime time.Time
}

// Storage provides an abstraction over key-value style file storage.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (*FileInfo, error)
	Rename(ctx context.Context, from, to string) error
}
