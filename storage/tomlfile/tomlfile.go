// Package tomlfile persists client state in a TOML document on disk.
package tomlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jrsteele09/aquamind/storage"
)

const (
	permFile   = 0o600
	permFolder = 0o700
)

var _ storage.Storage = (*Storage)(nil)

type schema struct {
	Entries map[string]string `toml:"entries"`
}

// Storage keeps every key in a single TOML file. The file is re-read whenever its
// modification time differs from the last load, so edits made by another process are
// picked up.
type Storage struct {
	FilePath string

	mu         sync.Mutex
	data       schema
	modifiedAt time.Time
}

// New creates the folder holding path if needed and returns a Storage over it.
func New(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), permFolder); err != nil {
		return nil, fmt.Errorf("failed to create storage folder: %w", err)
	}
	return &Storage{
		FilePath: path,
		data:     schema{Entries: map[string]string{}},
	}, nil
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return "", err
	}
	v, ok := s.data.Entries[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	s.data.Entries[key] = value
	return s.save()
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	if _, ok := s.data.Entries[key]; !ok {
		return nil
	}
	delete(s.data.Entries, key)
	return s.save()
}

func (s *Storage) refresh() error {
	info, err := os.Stat(s.FilePath)
	if errors.Is(err, fs.ErrNotExist) {
		// Deleted from outside: nothing is stored any more.
		s.data = schema{Entries: map[string]string{}}
		s.modifiedAt = time.Time{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file timestamp: %w", err)
	}
	if info.ModTime().Equal(s.modifiedAt) {
		return nil
	}

	var data schema
	if _, err := toml.DecodeFile(s.FilePath, &data); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if data.Entries == nil {
		data.Entries = map[string]string{}
	}
	s.data = data
	s.modifiedAt = info.ModTime()
	return nil
}

func (s *Storage) save() error {
	file, err := os.OpenFile(s.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, permFile)
	if err != nil {
		return fmt.Errorf("failed to save storage: %w", err)
	}
	enc := toml.NewEncoder(file)
	enc.Indent = ""
	if err := enc.Encode(s.data); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode storage: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to save storage: %w", err)
	}

	if info, err := os.Stat(s.FilePath); err == nil {
		s.modifiedAt = info.ModTime()
	}
	return nil
}
