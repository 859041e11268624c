package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes exports below a directory on disk.
type Local struct {
	baseDir string
}

// NewLocal creates the directory when it does not exist.
func NewLocal(baseDir string) (*Local, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = "datas/exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

func (s *Local) LocalBaseDir() string {
	return s.baseDir
}

func (s *Local) Name() string {
	return TypeLocal
}

// Put writes data and returns its slash-separated key relative to the base dir.
func (s *Local) Put(ctx context.Context, data []byte, opts PutOptions) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	key := ObjectKey(opts)
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if opts.SkipIfExists {
		if _, err := os.Stat(absPath); err == nil {
			return key, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return key, nil
}

var _ Archive = (*Local)(nil)
var _ LocalBaseDirProvider = (*Local)(nil)
