package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"researchhub/pkg/apperr"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

func NewGCSStore(ctx context.Context, cfg Config, logger *zap.Logger) (*GCSStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs: bucket required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.EmulatorHost != "":
		opts = append(opts,
			option.WithEndpoint(strings.TrimRight(cfg.EmulatorHost, "/")+"/storage/v1/"),
			option.WithoutAuthentication(),
		)
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	logger.Info("Object storage initialized", zap.String("backend", "gcs"), zap.String("bucket", cfg.Bucket))
	return &GCSStore{client: client, bucket: cfg.Bucket, logger: logger.Named("gcs")}, nil
}

// Put writes r to key; an existing object is never overwritten.
func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", apperr.Upstream("file storage", err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", apperr.Conflict("a file with this name already exists")
		}
		return "", apperr.Upstream("file storage", err)
	}

	s.logger.Info("File uploaded", zap.String("key", key), zap.Int64("size", w.Attrs().Size))
	return key, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
