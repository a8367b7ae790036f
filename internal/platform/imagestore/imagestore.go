// Package imagestore stores provider profile images. It defines the Store
// interface, a local-disk implementation, and an in-memory implementation for
// tests. Callers persist only the filename reference a Save returns.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrFileTooLarge       = errors.New("image exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxImageSize is the maximum allowed image size in bytes (5 MB).
const MaxImageSize = 5 * 1024 * 1024

// AllowedContentTypes lists accepted profile image MIME types.
var AllowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Store is the contract for profile image storage backends.
type Store interface {
	// Save validates and stores the image, returning the generated filename
	// reference.
	Save(ctx context.Context, contentType string, content io.Reader) (string, error)
	// Open returns a reader over a previously stored image.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	// Remove deletes a stored image. Removing a missing image is not an error.
	Remove(ctx context.Context, filename string) error
}

func readImage(contentType string, content io.Reader) ([]byte, string, error) {
	ext, ok := AllowedContentTypes[contentType]
	if !ok {
		return nil, "", ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, "", ErrFileTooLarge
	}

	return data, uuid.New().String() + ext, nil
}

// DiskStore stores images as files under a base directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed and returns a DiskStore.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, contentType string, content io.Reader) (string, error) {
	data, name, err := readImage(contentType, content)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	// Reject path traversal in stored references.
	if filepath.Base(filename) != filename {
		return nil, ErrImageNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Remove(_ context.Context, filename string) error {
	if filepath.Base(filename) != filename {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryStore is a thread-safe, in-memory Store for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, contentType string, content io.Reader) (string, error) {
	data, name, err := readImage(contentType, content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.images[name] = data
	s.mu.Unlock()
	return name, nil
}

func (s *MemoryStore) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.images[filename]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrImageNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Remove(_ context.Context, filename string) error {
	s.mu.Lock()
	delete(s.images, filename)
	s.mu.Unlock()
	return nil
}
