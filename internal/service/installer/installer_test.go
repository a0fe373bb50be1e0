package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildZip produces an in-memory archive from entry name to contents.
// Names ending in "/" become directory entries.
func buildZip(t *testing.T, entries []struct{ name, body string }) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, entry := range entries {
		file, err := writer.Create(entry.name)
		require.NoError(t, err)

		_, err = file.Write([]byte(entry.body))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// TestInstall_StripsRootPrefix verifies that the common root is removed from
// every entry and contents arrive byte-identical.
func TestInstall_StripsRootPrefix(t *testing.T) {
	t.Parallel()

	archive := buildZip(t, []struct{ name, body string }{
		{"Repo-main/", ""},
		{"Repo-main/main.py", "print('hi')\n"},
		{"Repo-main/src/app.py", "app = True\n"},
		{"Repo-main/src/assets/logo.txt", "logo"},
	})

	dir := t.TempDir()
	require.NoError(t, New().Install(context.Background(), archive, dir))

	got, err := os.ReadFile(filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	require.Equal(t, "print('hi')\n", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "src", "app.py"))
	require.NoError(t, err)
	require.Equal(t, "app = True\n", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "src", "assets", "logo.txt"))
	require.NoError(t, err)
	require.Equal(t, "logo", string(got))

	// The root directory itself must not appear under the target.
	_, err = os.Stat(filepath.Join(dir, "Repo-main"))
	require.True(t, os.IsNotExist(err))
}

// TestInstall_OverwritesExisting ensures existing files are replaced in place.
func TestInstall_OverwritesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("old"), 0o644))

	archive := buildZip(t, []struct{ name, body string }{
		{"Repo-main/main.py", "new"},
	})

	require.NoError(t, New().Install(context.Background(), archive, dir))

	got, err := os.ReadFile(filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	// No backup left behind.
	_, err = os.Stat(filepath.Join(dir, "main.py.old"))
	require.True(t, os.IsNotExist(err))
}

// TestInstall_MixedRoot rejects archives whose entries disagree on the root
// prefix without writing anything.
func TestInstall_MixedRoot(t *testing.T) {
	t.Parallel()

	archive := buildZip(t, []struct{ name, body string }{
		{"Repo-main/main.py", "print('hi')\n"},
		{"Other-root/evil.py", "boom"},
	})

	dir := t.TempDir()
	err := New().Install(context.Background(), archive, dir)
	require.ErrorIs(t, err, ErrPathMismatch)

	// Validation happens before the first write, so the tree is untouched.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestInstall_TraversalEntry rejects entries that escape the target directory.
func TestInstall_TraversalEntry(t *testing.T) {
	t.Parallel()

	archive := buildZip(t, []struct{ name, body string }{
		{"Repo-main/../outside.py", "boom"},
	})

	dir := t.TempDir()
	err := New().Install(context.Background(), archive, dir)
	require.ErrorIs(t, err, ErrPathMismatch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestInstall_CorruptArchive rejects unreadable and empty archives.
func TestInstall_CorruptArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := New().Install(context.Background(), []byte("definitely not a zip"), dir)
	require.ErrorIs(t, err, ErrCorrupt)

	// Structurally valid but empty.
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	require.NoError(t, writer.Close())

	err = New().Install(context.Background(), buf.Bytes(), dir)
	require.ErrorIs(t, err, ErrCorrupt)
}
