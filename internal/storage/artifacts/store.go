// Package artifacts stores generated report files on the local
// filesystem, keyed by a flat location name.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"finlog/internal/report"
)

// Store is a byte sink/source rooted at a single directory. Locations
// are bare file names; anything resembling a path is rejected so a
// stored location can never escape the root.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(location string) (string, error) {
	if location == "" || location != filepath.Base(location) {
		return "", fmt.Errorf("invalid artifact location %q", location)
	}
	return filepath.Join(s.dir, location), nil
}

// Write persists the artifact bytes and returns the size actually on
// disk, so metadata always reflects the written file.
func (s *Store) Write(ctx context.Context, location string, data []byte) (int64, error) {
	p, err := s.path(location)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return 0, fmt.Errorf("%w: %v", report.ErrStorageWrite, err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, fmt.Errorf("%w: stat after write: %v", report.ErrStorageWrite, err)
	}
	return info.Size(), nil
}

func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	p, err := s.path(location)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, report.ErrArtifactMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	p, err := s.path(location)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("stat artifact: %w", err)
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, location string) error {
	p, err := s.path(location)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
