package port

import "context"

// FileStorage defines storage operations for receipt originals. Paths are
// slash-separated and relative to the storage root.
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}
