// Package storage stages uploaded files on local disk until the controller
// has finished with them.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/pdf-qa-gen/frontend/internal/selector"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("staged file not found")

// Store defines the interface for file staging.
type Store interface {
	Save(name, contentType string, r io.Reader) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	Open(id string) (io.ReadCloser, error)
	Delete(id string) error
	List() []*models.FileInfo
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu         sync.RWMutex
	stagingDir string
	files      map[string]*models.FileInfo
}

// NewLocalStore creates a new LocalStore rooted at stagingDir.
func NewLocalStore(stagingDir string) (*LocalStore, error) {
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &LocalStore{
		stagingDir: stagingDir,
		files:      make(map[string]*models.FileInfo),
	}, nil
}

// Save copies r into the staging directory.
func (s *LocalStore) Save(name, contentType string, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.stagingDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:          id,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return info, nil
}

// Open returns a reader over a staged file.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	s.mu.RLock()
	_, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return os.Open(filepath.Join(s.stagingDir, id))
}

// Delete removes a staged file.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := filepath.Join(s.stagingDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// List returns staged files, newest first.
func (s *LocalStore) List() []*models.FileInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	return list
}

// CleanupOlderThan deletes staged files older than maxAge and returns how many went.
func (s *LocalStore) CleanupOlderThan(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, info := range s.List() {
		if info.UploadedAt.Before(cutoff) && s.Delete(info.ID) == nil {
			removed++
		}
	}
	return removed
}

// Purge deletes every staged file.
func (s *LocalStore) Purge() {
	for _, info := range s.List() {
		_ = s.Delete(info.ID)
	}
}

// Stage saves r and returns it as a selected file whose Release deletes the
// staged copy. Releasing a copy that is already gone is not an error.
func Stage(store Store, name, contentType string, r io.Reader) (selector.File, error) {
	info, err := store.Save(name, contentType, r)
	if err != nil {
		return selector.File{}, err
	}

	open := func() (io.ReadCloser, error) {
		return store.Open(info.ID)
	}
	release := func() error {
		// stale cleanup may have removed it already
		if err := store.Delete(info.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	}
	return selector.NewFile(info.Name, info.ContentType, info.Size, open, release), nil
}
