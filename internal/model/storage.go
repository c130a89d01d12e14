package model

import (
	"context"
	"io"
	"os"
	"time"
)

// Storage is an object store archiving finished downloads beyond the local
// directory.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (FileContent, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) (int, error)
}

// FileInfo describes a file in the download directory.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileStore manages the local download directory.
type FileStore interface {
	Dir() string
	Path(name string) string
	Open(name string) (*os.File, error)
	Stat(name string) (FileInfo, error)
	List() ([]FileInfo, error)
	RemoveAll() (int, error)
}

// FileContent is a downloaded file ready to be served. Size is -1 when unknown.
type FileContent struct {
	Name    string
	Size    int64
	ModTime time.Time
	Body    io.ReadCloser
}
