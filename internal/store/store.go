// Package store persists the preferences document. The document is always
// read and written whole; backends differ only in where it lives.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/smokyabdulrahman/vakit/internal/config"
)

// ErrUnknownBackend is returned by Open for a spec it cannot route.
var ErrUnknownBackend = errors.New("unknown store backend")

// Backend loads and saves the whole preferences document.
type Backend interface {
	// Load returns the stored document, or config.Defaults() when nothing
	// has been stored yet.
	Load(ctx context.Context) (*config.Config, error)
	// Save replaces the stored document.
	Save(ctx context.Context, cfg *config.Config) error
	Close() error
}

// Open routes a store spec to a backend:
//
//	""  or "file"      the default preferences path
//	"file:<path>"      a JSON file at path
//	"sqlite:<path>"    a SQLite database at path
//	"redis://..."      a Redis server (go-redis URL syntax)
func Open(ctx context.Context, spec string, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case spec == "" || spec == "file":
		path, err := config.Path()
		if err != nil {
			return nil, err
		}
		return NewFile(path), nil
	case strings.HasPrefix(spec, "file:"):
		return NewFile(strings.TrimPrefix(spec, "file:")), nil
	case strings.HasPrefix(spec, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(spec, "sqlite:"), logger)
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		return OpenRedis(ctx, spec, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, spec)
	}
}
