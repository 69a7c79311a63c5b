package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path uploaded images are served under.
const URLPrefix = "/uploads/"

var (
	ErrTooLarge        = errors.New("image exceeds upload limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore keeps report images on local disk under a random name.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore stores files in dir. maxBytes <= 0 means no size limit.
func NewImageStore(dir string, maxBytes int64) *ImageStore {
	return &ImageStore{dir: dir, maxBytes: maxBytes}
}

// Dir is the directory served under URLPrefix.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save copies the upload to disk and returns its public path.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Unknown paths are ignored.
func (s *ImageStore) Remove(path string) error {
	name := strings.TrimPrefix(path, URLPrefix)
	if name == path || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
