// Package storage keeps uploaded files under owner-scoped object keys.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"researchhub/pkg/apperr"

	"go.uber.org/zap"
)

type Config struct {
	Backend         string `yaml:"backend"`
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	EmulatorHost    string `yaml:"emulator_host"`
	LocalDir        string `yaml:"local_dir"`
}

// ObjectKey returns "<userID>/<file name>". Directory parts of name are
// dropped so a client cannot write outside its own prefix.
func ObjectKey(userID int64, name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "" || base == "." || base == "/" || base == ".." {
		return "", apperr.Validation("invalid file name")
	}
	return fmt.Sprintf("%d/%s", userID, base), nil
}

type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Close() error
}

// Open returns the backend named by cfg.Backend ("gcs" or "local").
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "gcs":
		return NewGCSStore(ctx, cfg, logger)
	case "", "local":
		return NewLocalStore(cfg.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
