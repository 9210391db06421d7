package storage

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
)

// LocalStore keeps images in a directory served under a URL prefix.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates dir if needed. prefix is the URL path the directory
// is served from, e.g. "/uploads".
func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:    dir,
		prefix: URLPrefix(prefix),
	}, nil
}

// DefaultURLPrefix is used when no prefix, or only "/", is configured.
const DefaultURLPrefix = "/uploads"

// URLPrefix normalises a serving prefix to "/name" form. The root path is
// never a valid prefix since references must stay under a routable subtree.
func URLPrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return DefaultURLPrefix
	}
	return "/" + trimmed
}

// Dir is the directory images are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Prefix is the URL path prefix of returned references.
func (s *LocalStore) Prefix() string { return s.prefix }

func (s *LocalStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	name := GenerateName(filename)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return path.Join(s.prefix, name), nil
}

func (s *LocalStore) Remove(_ context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.prefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return ErrForeignReference
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}
