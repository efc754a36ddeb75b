package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// Source serves the active concept catalog. It starts from the bundled
// table or a JSON file, and Reload swaps in a new catalog atomically.
type Source struct {
	current atomic.Pointer[receipt.Catalog]
	path    string
	logger  *zap.Logger
}

var _ port.CatalogProvider = (*Source)(nil)

// NewSource loads the catalog from path, or uses the bundled table when
// path is empty.
func NewSource(path string, logger *zap.Logger) (*Source, error) {
	s := &Source{path: path, logger: logger}
	if path == "" {
		s.current.Store(receipt.DefaultCatalog())
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Static wraps a fixed catalog
func Static(c *receipt.Catalog) *Source {
	s := &Source{logger: zap.NewNop()}
	s.current.Store(c)
	return s
}

// Catalog returns the catalog currently in effect
func (s *Source) Catalog() *receipt.Catalog {
	return s.current.Load()
}

// Path returns the backing file, empty for the bundled table
func (s *Source) Path() string {
	return s.path
}

// Reload reads the file again. On error the previous catalog stays active.
func (s *Source) Reload() error {
	c, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.current.Store(c)
	s.logger.Info("Concept catalog loaded",
		zap.String("path", s.path),
		zap.Int("concepts", c.Len()),
		zap.Strings("types", c.Types()))
	return nil
}

// LoadFile parses a JSON array of concept entries
func LoadFile(path string) (*receipt.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []receipt.ConceptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog file %s has no concepts", path)
	}

	c, err := receipt.NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	return c, nil
}
