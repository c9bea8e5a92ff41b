package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/infrastructure/docstore"
)

func TestBackupRunnerRun(t *testing.T) {
	store, err := docstore.Open(filepath.Join(t.TempDir(), "store.db"), docstore.UUIDCodec{})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.InsertOne(context.Background(), "tasks", docstore.Document{"title": "t"})
	require.NoError(t, err)

	dir := t.TempDir()
	runner := NewBackupRunner(store, zap.NewNop(), BackupConfig{Dir: dir, Keep: 5})

	require.NoError(t, runner.Run(context.Background()))

	snapshots, err := filepath.Glob(filepath.Join(dir, snapshotPrefix+"*.db"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestBackupRunnerPrunes(t *testing.T) {
	store, err := docstore.Open(filepath.Join(t.TempDir(), "store.db"), docstore.UUIDCodec{})
	require.NoError(t, err)
	defer store.Close()

	dir := t.TempDir()
	runner := NewBackupRunner(store, zap.NewNop(), BackupConfig{Dir: dir, Keep: 2})

	// Snapshot names have second resolution; space them out.
	for i := 0; i < 3; i++ {
		require.NoError(t, runner.Run(context.Background()))
		time.Sleep(1100 * time.Millisecond)
	}

	snapshots, err := filepath.Glob(filepath.Join(dir, snapshotPrefix+"*.db"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}
