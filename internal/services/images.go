package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"yatube/internal/config"
)

// imageDir is the storage prefix for post images.
const imageDir = "posts"

// ImageStore 帖子图片存储, 返回的路径形如 posts/cat.gif
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, stored string) error
	URL(stored string) string
}

// NewImageStore picks the backend named by cfg.Storage.
func NewImageStore(ctx context.Context, cfg config.MediaConfig) (ImageStore, error) {
	switch cfg.Storage {
	case "minio":
		return NewMinioImageStore(ctx, cfg)
	default:
		return NewLocalImageStore(cfg.Root, cfg.URL), nil
	}
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}

// uniqueName keeps the extension and inserts a short random suffix.
func uniqueName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_" + uuid.NewString()[:7] + ext
}

func joinURL(base, stored string) string {
	if stored == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + stored
}

// LocalImageStore keeps images under root on the local filesystem.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: baseURL}
}

// Root is the directory served under the media URL.
func (s *LocalImageStore) Root() string {
	return s.root
}

func (s *LocalImageStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	dir := filepath.Join(s.root, imageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name = cleanName(name)
	candidate := name
	for attempt := 0; attempt < 5; attempt++ {
		full := filepath.Join(dir, candidate)
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = uniqueName(name)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create image file: %w", err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(full)
			return "", fmt.Errorf("write image file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(full)
			return "", fmt.Errorf("close image file: %w", err)
		}
		return path.Join(imageDir, candidate), nil
	}
	return "", fmt.Errorf("no free file name for %s", name)
}

func (s *LocalImageStore) Delete(_ context.Context, stored string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(stored)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalImageStore) URL(stored string) string {
	return joinURL(s.baseURL, stored)
}

// MinioImageStore keeps images in an S3 compatible bucket.
type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioImageStore(ctx context.Context, cfg config.MediaConfig) (*MinioImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.MinioEndpoint + "/" + cfg.MinioBucket
	}

	return &MinioImageStore{client: client, bucket: cfg.MinioBucket, publicURL: publicURL}, nil
}

func (s *MinioImageStore) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func (s *MinioImageStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	name = cleanName(name)
	key := path.Join(imageDir, name)

	taken, err := s.exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}
	if taken {
		key = path.Join(imageDir, uniqueName(name))
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload minio: %w", err)
	}
	return key, nil
}

func (s *MinioImageStore) Delete(ctx context.Context, stored string) error {
	return s.client.RemoveObject(ctx, s.bucket, stored, minio.RemoveObjectOptions{})
}

func (s *MinioImageStore) URL(stored string) string {
	return joinURL(s.publicURL, stored)
}
