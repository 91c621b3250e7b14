package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderly/agency-api/internal/config"
	"go.uber.org/zap"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := "booking voucher PDF bytes"
	storagePath, size, err := store.Upload(context.Background(), "voucher.pdf", "application/pdf", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, ".pdf", filepath.Ext(storagePath))

	// Paths are sharded two levels deep on the generated file ID
	parts := strings.Split(filepath.ToSlash(storagePath), "/")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 2)
	assert.Len(t, parts[1], 2)

	reader, err := store.Download(context.Background(), storagePath)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestLocalStorage_Delete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	storagePath, _, err := store.Upload(context.Background(), "itinerary.txt", "text/plain", strings.NewReader("day 1: arrival"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), storagePath))

	_, err = store.Download(context.Background(), storagePath)
	assert.Error(t, err)

	// Deleting a missing file is not an error
	assert.NoError(t, store.Delete(context.Background(), storagePath))
}

func TestNewStorage_Modes(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		store, err := NewStorage(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, store)
	})

	t.Run("cloud without connection string", func(t *testing.T) {
		_, err := NewStorage(&config.StorageConfig{Mode: "cloud"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := NewStorage(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
		assert.Error(t, err)
	})
}
