package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/config"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	payload := []byte(`{"total":42}`)
	size, err := store.Put(ctx, "snapshots/2026-03-15/sales-month.json", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)

	rc, err := store.Get(ctx, "snapshots/2026-03-15/sales-month.json")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, "snapshots/2026-03-15/sales-month.json"))
	_, err = store.Get(ctx, "snapshots/2026-03-15/sales-month.json")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "snapshots/2026-03-15/sales-month.json"))
}

func TestLocalStorage_PutReplacesExisting(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Put(ctx, "a/b.json", "application/json", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "a/b.json", "application/json", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(base, "a", "b.json"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(base, "a"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalStorage_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "/etc/passwd", "../outside.json", "a/../../outside.json", "..", `a\b.json`} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Put(ctx, name, "application/json", strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrInvalidName)
			_, err = store.Get(ctx, name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("local", func(t *testing.T) {
		store, err := NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, logger)
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, store)
	})

	t.Run("cloud without connection string", func(t *testing.T) {
		_, err := NewStorage(ctx, &config.StorageConfig{Mode: "cloud"}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, logger)
		assert.Error(t, err)
	})
}
