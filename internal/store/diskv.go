package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"biocode/internal/apperrors"
)

// DiskStore is the default store: one file per (user, key) document under
// the configured data directory. It mirrors the browser-local storage the
// frontend used before the backend existed, which keeps single-node
// deployments dependency-free.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore opens (creating if needed) a file-backed store rooted at dir.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("disk store: data directory is required")
	}
	d := diskv.New(diskv.Options{
		BasePath: filepath.Clean(dir),
		// user/<name>/<key> so one user's documents share a directory
		AdvancedTransform: func(key string) *diskv.PathKey {
			parts := strings.Split(key, "/")
			return &diskv.PathKey{
				Path:     parts[:len(parts)-1],
				FileName: parts[len(parts)-1] + ".json",
			}
		},
		InverseTransform: func(pk *diskv.PathKey) string {
			name := strings.TrimSuffix(pk.FileName, ".json")
			return strings.Join(append(append([]string{}, pk.Path...), name), "/")
		},
		CacheSizeMax: 8 * 1024 * 1024,
	})
	return &DiskStore{d: d}, nil
}

func diskKey(username, key string) string {
	return "user/" + username + "/" + key
}

// Get implements Store.
func (s *DiskStore) Get(_ context.Context, username, key string) ([]byte, error) {
	raw, err := s.d.Read(diskKey(username, key))
	if err != nil {
		if !s.d.Has(diskKey(username, key)) {
			return nil, ErrNoDocument
		}
		return nil, apperrors.Storagef("read %s for %s: %v", key, username, err)
	}
	return raw, nil
}

// Set implements Store.
func (s *DiskStore) Set(_ context.Context, username, key string, value []byte) error {
	if err := s.d.Write(diskKey(username, key), value); err != nil {
		return apperrors.Storagef("write %s for %s: %v", key, username, err)
	}
	return nil
}

// Delete implements Store.
func (s *DiskStore) Delete(_ context.Context, username, key string) error {
	err := s.d.Erase(diskKey(username, key))
	if err != nil && s.d.Has(diskKey(username, key)) {
		return apperrors.Storagef("delete %s for %s: %v", key, username, err)
	}
	return nil
}
