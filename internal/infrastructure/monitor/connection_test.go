package monitor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/infrastructure/docstore"
)

func TestMonitorRefresh(t *testing.T) {
	store, err := docstore.Open(filepath.Join(t.TempDir(), "mon.db"), docstore.UUIDCodec{})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.InsertOne(context.Background(), "tasks", docstore.Document{"title": "t"})
	require.NoError(t, err)

	mon := New(store, 0, zap.NewNop())
	mon.Refresh()

	assert.True(t, mon.IsOnline())
	status := mon.GetStatus()
	assert.Equal(t, 1, status.Tasks)
	assert.Zero(t, status.Users)
	assert.False(t, status.LastCheck.IsZero())
}

func TestMonitorOfflineAfterClose(t *testing.T) {
	store, err := docstore.Open(filepath.Join(t.TempDir(), "mon.db"), docstore.UUIDCodec{})
	require.NoError(t, err)

	mon := New(store, 0, zap.NewNop())
	mon.Refresh()
	require.True(t, mon.IsOnline())

	require.NoError(t, store.Close())
	mon.Refresh()
	assert.False(t, mon.IsOnline())
}
