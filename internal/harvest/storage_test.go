package harvest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/harvest"
)

func TestStorage_CommitRecord(t *testing.T) {
	root := t.TempDir()
	storage := harvest.NewStorage(root, adapter.NewFileSystem(), adapter.NewJSON())

	record := &domain.HarvestedRecord{
		Name:        "Token #42",
		Description: "A test token",
	}

	err := storage.CommitRecord("my-collection", "42", record, fakeImage, ".gif")
	require.NoError(t, err)

	assert.Equal(t, "42.gif", record.ImagePath)

	image, err := os.ReadFile(filepath.Join(root, "my-collection", "42.gif"))
	require.NoError(t, err)
	assert.Equal(t, fakeImage, image)

	data, err := os.ReadFile(filepath.Join(root, "my-collection", "42.json"))
	require.NoError(t, err)

	var persisted domain.HarvestedRecord
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "Token #42", persisted.Name)
	assert.Equal(t, "42.gif", persisted.ImagePath)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(root, "my-collection"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "leftover temp file %s", entry.Name())
	}
}

func TestStorage_CommitRecord_Overwrites(t *testing.T) {
	root := t.TempDir()
	storage := harvest.NewStorage(root, adapter.NewFileSystem(), adapter.NewJSON())

	first := &domain.HarvestedRecord{Name: "old name"}
	require.NoError(t, storage.CommitRecord("my-collection", "1", first, []byte("old"), ".png"))

	second := &domain.HarvestedRecord{Name: "new name"}
	require.NoError(t, storage.CommitRecord("my-collection", "1", second, []byte("new"), ".png"))

	data, err := os.ReadFile(filepath.Join(root, "my-collection", "1.json"))
	require.NoError(t, err)

	var persisted domain.HarvestedRecord
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "new name", persisted.Name)

	image, err := os.ReadFile(filepath.Join(root, "my-collection", "1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), image)
}

func TestStorage_RecordExists(t *testing.T) {
	root := t.TempDir()
	storage := harvest.NewStorage(root, adapter.NewFileSystem(), adapter.NewJSON())

	assert.False(t, storage.RecordExists("my-collection", "1"))

	record := &domain.HarvestedRecord{Name: "Token #1"}
	require.NoError(t, storage.CommitRecord("my-collection", "1", record, fakeImage, ".png"))

	assert.True(t, storage.RecordExists("my-collection", "1"))
	assert.False(t, storage.RecordExists("my-collection", "2"))
	assert.False(t, storage.RecordExists("other-collection", "1"))
}
