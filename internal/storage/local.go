package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"researchhub/pkg/apperr"

	"go.uber.org/zap"
)

// LocalStore writes files under a directory; used when no bucket is configured.
type LocalStore struct {
	root   string
	logger *zap.Logger
}

func NewLocalStore(root string, logger *zap.Logger) (*LocalStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, logger: logger.Named("local_storage")}, nil
}

func (s *LocalStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", apperr.Internal("create upload dir", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", apperr.Conflict("a file with this name already exists")
	}
	if err != nil {
		return "", apperr.Internal("open upload file", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", apperr.Internal("write upload file", err)
	}

	s.logger.Info("File uploaded", zap.String("key", key), zap.Int64("size", n))
	return key, nil
}

func (s *LocalStore) Close() error { return nil }
