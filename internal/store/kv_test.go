package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/soundbyte/internal/config"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	disk, err := NewDisk(filepath.Join(dir, "disk"))
	require.NoError(t, err)

	lite, err := NewSQLite(filepath.Join(dir, "db", "soundbyte.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })

	return map[string]KV{
		"memory": NewMemory(),
		"disk":   disk,
		"sqlite": lite,
	}
}

func TestKVRoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get("missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set("doc", []byte(`{"collections":[]}`)))
			got, err := kv.Get("doc")
			require.NoError(t, err)
			assert.Equal(t, `{"collections":[]}`, string(got))

			require.NoError(t, kv.Set("doc", []byte(`{}`)))
			got, err = kv.Get("doc")
			require.NoError(t, err)
			assert.Equal(t, `{}`, string(got))
		})
	}
}

func TestDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewDisk(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("soundbyte-collections", []byte("v1")))

	second, err := NewDisk(dir)
	require.NoError(t, err)
	got, err := second.Get("soundbyte-collections")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("v1")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
}

func TestOpen(t *testing.T) {
	kv, err := Open(config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)
	assert.NoError(t, Close(kv))

	_, err = Open(config.StorageConfig{Backend: "s3"})
	require.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u/.soundbyte", SQLiteFile), SQLitePath("/home/u/.soundbyte"))
	assert.Equal(t, "/data/kv.db", SQLitePath("/data/kv.db"))
	assert.Equal(t, "/data/kv.SQLite", SQLitePath("/data/kv.SQLite"))
}

func TestSwitchDiskToSQLiteOnSamePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".soundbyte")

	disk, err := Open(config.StorageConfig{Backend: config.BackendDisk, Path: dir})
	require.NoError(t, err)
	require.NoError(t, disk.Set("soundbyte-collections", []byte("from disk")))

	lite, err := Open(config.StorageConfig{Backend: config.BackendSQLite, Path: dir})
	require.NoError(t, err)
	defer Close(lite)
	require.NoError(t, lite.Set("soundbyte-collections", []byte("from sqlite")))
	assert.FileExists(t, filepath.Join(dir, SQLiteFile))

	got, err := disk.Get("soundbyte-collections")
	require.NoError(t, err)
	assert.Equal(t, "from disk", string(got))
}
