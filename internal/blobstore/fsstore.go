package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"demoforge/internal/services"
)

// FSStore is a filesystem-backed Store rooted at a single directory.
type FSStore struct {
	root string
}

// NewFS constructs a filesystem blob store, creating the root directory.
func NewFS(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("blobstore: root directory required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

// Root returns the store's root directory.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) resolve(key string) (string, error) {
	cleaned := path.Clean(strings.TrimSpace(key))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "/") || strings.HasPrefix(cleaned, "..") {
		return "", services.Wrap(services.ErrInvalidInput, "blobstore", "resolve key", key, nil)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Put writes an object, replacing any existing one at the same key. The write
// goes to a temp file first so readers never observe a partial object.
func (s *FSStore) Put(ctx context.Context, key string, data io.Reader) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("blobstore put %q: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return fmt.Errorf("blobstore put %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("blobstore put %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("blobstore put %q: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("blobstore put %q: %w", key, err)
	}
	return nil
}

// Get opens an object for reading.
func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "blobstore", "get object", key, nil)
		}
		return nil, fmt.Errorf("blobstore get %q: %w", key, err)
	}
	return file, nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blobstore delete %q: %w", key, err)
	}
	return nil
}

// List returns all keys under the given prefix, sorted.
func (s *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Stat returns an object's size in bytes.
func (s *FSStore) Stat(ctx context.Context, key string) (int64, error) {
	target, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, services.Wrap(services.ErrNotFound, "blobstore", "stat object", key, nil)
		}
		return 0, fmt.Errorf("blobstore stat %q: %w", key, err)
	}
	return info.Size(), nil
}

// Presign returns a URL for direct object access. The filesystem
// implementation serves file URLs; the TTL is accepted for interface parity.
func (s *FSStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "blobstore", "presign object", key, nil)
		}
		return "", fmt.Errorf("blobstore presign %q: %w", key, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(target)}
	return u.String(), nil
}

// PathFor resolves a key to its backing file path. Media processors use this
// to hand local paths to ffmpeg without copying through Get.
func (s *FSStore) PathFor(key string) (string, error) {
	return s.resolve(key)
}
