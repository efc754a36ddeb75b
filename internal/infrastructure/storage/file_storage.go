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

	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
)

// ReceiptStore keeps receipt originals under a base directory. All access
// goes through an os.Root, so relative paths cannot escape it.
type ReceiptStore struct {
	root   *os.Root
	logger *zap.Logger
}

var _ port.FileStorage = (*ReceiptStore)(nil)

// NewReceiptStore creates baseDir if needed and opens it as the store root
func NewReceiptStore(baseDir string, logger *zap.Logger) (*ReceiptStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipts directory: %w", err)
	}
	return &ReceiptStore{root: root, logger: logger}, nil
}

// Save writes content to the relative path, creating parent directories
func (s *ReceiptStore) Save(ctx context.Context, rel string, content []byte) error {
	name, err := clean(rel)
	if err != nil {
		return err
	}

	if err := s.mkdirAll(path.Dir(name)); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", rel),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := s.root.OpenFile(filepath.FromSlash(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		s.logger.Error("Failed to write file",
			zap.String("path", rel),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("path", rel),
		zap.Int("size", len(content)))
	return nil
}

// Read returns the content stored at the relative path
func (s *ReceiptStore) Read(ctx context.Context, rel string) ([]byte, error) {
	name, err := clean(rel)
	if err != nil {
		return nil, err
	}

	f, err := s.root.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Exists reports whether a regular file is stored at the relative path
func (s *ReceiptStore) Exists(ctx context.Context, rel string) bool {
	name, err := clean(rel)
	if err != nil {
		return false
	}
	info, err := s.root.Stat(filepath.FromSlash(name))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the file; a missing file is not an error
func (s *ReceiptStore) Delete(ctx context.Context, rel string) error {
	name, err := clean(rel)
	if err != nil {
		return err
	}

	if err := s.root.Remove(filepath.FromSlash(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Failed to delete file",
			zap.String("path", rel),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Close releases the root directory handle
func (s *ReceiptStore) Close() error {
	return s.root.Close()
}

func (s *ReceiptStore) mkdirAll(dir string) error {
	if dir == "." {
		return nil
	}
	current := ""
	for _, part := range strings.Split(dir, "/") {
		current = path.Join(current, part)
		err := s.root.Mkdir(filepath.FromSlash(current), 0o755)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}

// clean validates a slash-separated relative path
func clean(rel string) (string, error) {
	name := path.Clean(strings.TrimPrefix(rel, "/"))
	if rel == "" || !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("invalid receipt path: %q", rel)
	}
	return name, nil
}
