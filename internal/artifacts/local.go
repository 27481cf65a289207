package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &LocalStore{baseDir: abs}, nil
}

func (s *LocalStore) Name() string { return "local" }

// resolve maps key to a path under baseDir, rejecting traversal.
func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || hasParentSegment(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if full != s.baseDir && !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes base directory", ErrInvalidKey, key)
	}
	return full, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	// Readers never observe a partially written artifact.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return full, nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}
