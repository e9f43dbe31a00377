// Package jsonfile keeps each logical store as a <name>.json file in one
// directory.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

type Substrate struct {
	fs  afero.Fs
	dir string
}

// New uses the host filesystem rooted at dir, creating it when missing.
func New(dir string) (*Substrate, error) {
	return NewWithFs(afero.NewOsFs(), dir)
}

func NewWithFs(fsys afero.Fs, dir string) (*Substrate, error) {
	exists, err := afero.DirExists(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("stat store dir %s: %w", dir, err)
	}
	if !exists {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir %s: %w", dir, err)
		}
	}
	return &Substrate{fs: fsys, dir: dir}, nil
}

func (s *Substrate) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Substrate) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Write replaces the store file through a temp file and rename so readers
// never observe a half-written document.
func (s *Substrate) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := s.fs.Rename(tmpName, s.Path(name)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
