package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/self-updater/internal/logger"
)

var (
	// ErrCorrupt is returned when the archive cannot be opened or is empty.
	ErrCorrupt = errors.New("archive is corrupt or empty")
	// ErrPathMismatch is returned when an entry does not live under the
	// archive's common root, or its path escapes the target directory.
	ErrPathMismatch = errors.New("entry path outside archive root")
)

// DefaultFileMode is used for entries that carry no mode of their own.
const DefaultFileMode os.FileMode = 0o755

// Installer applies a release archive over a target directory.
//
// The archive is expected to contain a single common root directory (the
// GitHub zipball layout, e.g. "Repo-main/") mirroring the target tree. The
// root component is stripped from every entry before writing. All entry
// paths are validated before the first write, so a malformed archive is
// rejected whole rather than partially applied. An install interrupted
// mid-write still leaves a mixed-version tree; there is no rollback.
type Installer struct{}

// New returns an Installer.
func New() *Installer {
	return &Installer{}
}

// Install extracts the archive into targetDir, stripping the common root
// prefix and overwriting existing files. Parent directories are created as
// needed. Directory entries and the bare root are skipped.
func (i *Installer) Install(ctx context.Context, archive []byte, targetDir string) error {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open archive: %w", ErrCorrupt)
	}

	if len(reader.File) == 0 {
		return fmt.Errorf("no entries: %w", ErrCorrupt)
	}

	root := rootComponent(reader.File[0].Name)

	logger.InfoKV(ctx, "Extracting archive", "root", root, "entries", len(reader.File))

	// Validate every path before touching the target tree.
	files := make([]*zip.File, 0, len(reader.File))

	for _, entry := range reader.File {
		relativePath, pathErr := entryRelativePath(entry.Name, root)
		if pathErr != nil {
			return pathErr
		}

		if entry.FileInfo().IsDir() || relativePath == "" {
			continue
		}

		files = append(files, entry)
	}

	for _, entry := range files {
		if err = i.writeEntry(ctx, entry, root, targetDir); err != nil {
			return err
		}
	}

	return nil
}

// writeEntry writes one validated file entry beneath targetDir.
func (i *Installer) writeEntry(ctx context.Context, entry *zip.File, root, targetDir string) error {
	relativePath, err := entryRelativePath(entry.Name, root)
	if err != nil {
		return err
	}

	targetPath := filepath.Join(targetDir, filepath.FromSlash(relativePath))

	if err = os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", relativePath, err)
	}

	// go-update swaps via a sibling temp file and needs an existing target.
	if _, err = os.Stat(targetPath); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(targetPath); err != nil {
			return fmt.Errorf("create %s: %w", relativePath, err)
		}
	}

	mode := entry.Mode()
	if mode == 0 {
		mode = DefaultFileMode
	}

	contents, err := entry.Open()
	if err != nil {
		return fmt.Errorf("read entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = contents.Close()
	}()

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: mode,
	}

	if err = goupdate.Apply(contents, options); err != nil {
		return fmt.Errorf("apply %s: %w", relativePath, err)
	}

	// Drop the backup goupdate leaves behind.
	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	logger.DebugKV(ctx, "Wrote file", "path", targetPath)

	return nil
}

// rootComponent returns the path component before the first separator.
func rootComponent(name string) string {
	root, _, _ := strings.Cut(name, "/")
	return root
}

// entryRelativePath strips the common root from an entry name and rejects
// names outside the root or containing traversal segments. The bare root
// maps to an empty path.
func entryRelativePath(name, root string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%s: absolute path: %w", name, ErrPathMismatch)
	}

	prefix, relativePath, _ := strings.Cut(name, "/")
	if prefix != root {
		return "", fmt.Errorf("%s: expected root %q: %w", name, root, ErrPathMismatch)
	}

	for _, segment := range strings.Split(relativePath, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%s: traversal segment: %w", name, ErrPathMismatch)
		}
	}

	return strings.TrimSuffix(relativePath, "/"), nil
}
