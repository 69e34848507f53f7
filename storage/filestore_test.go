package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiskStore_Save_WritesPayloadUnderTimestampedName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, testLogger())
	require.NoError(t, err)

	stored, err := store.Save("notes.txt", []byte("hello"))
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(stored.StoredName, "_notes.txt"))
	require.Equal(t, "notes.txt", stored.Filename)
	require.Equal(t, int64(5), stored.Size)
	require.NotZero(t, stored.ID)

	data, err := os.ReadFile(filepath.Join(dir, stored.StoredName))
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestDiskStore_Save_SniffsMimeFromBytes(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	// PNG magic bytes behind a misleading filename
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	stored, err := store.Save("definitely-a-doc.txt", png)
	require.NoError(t, err)

	require.Equal(t, "image/png", stored.MimeType)
}

func TestDiskStore_Save_StripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, testLogger())
	require.NoError(t, err)

	stored, err := store.Save("../../etc/passwd", []byte("nope"))
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(stored.StoredName, "_passwd"))
	require.NotContains(t, stored.StoredName, "..")
	_, err = os.Stat(filepath.Join(dir, stored.StoredName))
	require.NoError(t, err)
}

func TestDiskStore_Save_SameNameNeverCollides(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	first, err := store.Save("cat.png", []byte("one"))
	require.NoError(t, err)
	second, err := store.Save("cat.png", []byte("two"))
	require.NoError(t, err)

	// Different IDs always; stored names collide only if both uploads
	// land on the same millisecond, which the index key disambiguates
	require.NotEqual(t, first.ID, second.ID)
}
