// Package filesystem provides the filesystem probe used by h2server.
// All lookups go through an os.Root so a logical path can never escape the
// served directory, and every result is reported as an explicit kind rather
// than an error to interpret.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/sagarc03/h2server"
)

// Store answers probe queries for one served root.
type Store struct {
	root *os.Root
}

// NewProbe creates a new Store over the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewProbe(root *os.Root) *Store {
	return &Store{root: root}
}

// Name returns the root directory name.
func (s *Store) Name() string {
	return s.root.Name()
}

// Stat reports the kind of entry at a logical path. Absence is (KindAbsent, nil);
// any other failure wraps h2server.ErrProbe.
func (s *Store) Stat(ctx context.Context, name string) (h2server.ProbeKind, error) {
	if err := ctx.Err(); err != nil {
		return h2server.KindAbsent, fmt.Errorf("stat %s: %w: %w", name, h2server.ErrProbe, err)
	}

	info, err := s.root.Stat(rel(name))
	if err != nil {
		if isAbsent(err) {
			return h2server.KindAbsent, nil
		}
		return h2server.KindAbsent, fmt.Errorf("stat %s: %w: %w", name, h2server.ErrProbe, err)
	}

	switch {
	case info.Mode().IsRegular():
		return h2server.KindFile, nil
	case info.IsDir():
		return h2server.KindDirectory, nil
	default:
		return h2server.KindOther, nil
	}
}

// ReadDir returns the entry names of a directory, sorted.
func (s *Store) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read dir %s: %w: %w", name, h2server.ErrProbe, err)
	}

	entries, err := fs.ReadDir(s.root.FS(), rel(name))
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w: %w", name, h2server.ErrProbe, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// List returns the entries of a directory with their file info, for listings.
func (s *Store) List(ctx context.Context, name string) ([]fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", name, h2server.ErrProbe, err)
	}

	entries, err := fs.ReadDir(s.root.FS(), rel(name))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", name, h2server.ErrProbe, err)
	}

	infos := make([]fs.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			if isAbsent(err) {
				continue
			}
			return nil, fmt.Errorf("list %s: %w: %w", name, h2server.ErrProbe, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Open opens a file for reading. Returns h2server.ErrNotFound if it does not exist.
func (s *Store) Open(ctx context.Context, name string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(rel(name))
	if err != nil {
		if isAbsent(err) {
			return nil, fmt.Errorf("open %s: %w", name, h2server.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w: %w", name, h2server.ErrProbe, err)
	}

	return f, nil
}

// rel converts a logical path into a name relative to the root.
func rel(name string) string {
	name = strings.Trim(h2server.CleanPath(name), "/")
	if name == "" {
		return "."
	}
	return name
}

// isAbsent treats "a/b" below a regular file "a" as missing rather than broken.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
