package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/self-updater/internal/config"
	"github.com/oshokin/self-updater/internal/domain/release"
)

// Filename is the fixed name of the version record inside the target directory.
const Filename = "version.json"

// Repository defines persistence operations for the local version record.
type Repository interface {
	Load(ctx context.Context) (*release.Record, error)
	Save(ctx context.Context, rec *release.Record) error
}

// FileRepository persists the version record to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON record file.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the record file does not exist yet.
	// Callers treat it as version "0.0.0", not as a failure.
	ErrNotFound = errors.New("version record not found")

	// errEmptyVersion guards the invariant that a written record always
	// carries a non-empty version string.
	errEmptyVersion = errors.New("version must not be empty")
)

// NewFileRepository creates a repository for the record file inside targetDir.
func NewFileRepository(targetDir string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(filepath.Join(targetDir, Filename)),
	}
}

// Load reads the record from disk.
func (r *FileRepository) Load(_ context.Context) (*release.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read version record: %w", err)
	}

	var rec release.Record
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode version record: %w", err)
	}

	if rec.Version == "" {
		rec.Version = release.SentinelVersion
	}

	return &rec, nil
}

// Save writes the record to disk as JSON.
func (r *FileRepository) Save(_ context.Context, rec *release.Record) error {
	if rec == nil || rec.Version == "" {
		return errEmptyVersion
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode version record: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write version record: %w", err)
	}

	return nil
}
