package store

import (
	"context"

	"github.com/smokyabdulrahman/vakit/internal/config"
)

// File keeps the document as JSON on disk.
type File struct {
	Path string
}

var _ Backend = (*File)(nil)

// NewFile returns a file backend at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load(_ context.Context) (*config.Config, error) {
	return config.LoadFrom(f.Path)
}

func (f *File) Save(_ context.Context, cfg *config.Config) error {
	return cfg.SaveTo(f.Path)
}

func (f *File) Close() error { return nil }
