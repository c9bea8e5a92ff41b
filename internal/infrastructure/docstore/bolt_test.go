package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), UUIDCodec{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndFindOne(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	input := Document{"title": "write tests", "status": "pending"}
	id, err := store.InsertOne(ctx, "tasks", input)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Id assignment happens on an internal copy.
	assert.NotContains(t, input, IDField)

	doc, err := store.FindOne(ctx, "tasks", map[string]any{IDField: id})
	require.NoError(t, err)
	assert.Equal(t, "write tests", doc["title"])
	assert.Equal(t, id, doc[IDField])

	byField, err := store.FindOne(ctx, "tasks", map[string]any{"status": "pending"})
	require.NoError(t, err)
	assert.Equal(t, id, byField[IDField])

	_, err = store.FindOne(ctx, "tasks", map[string]any{"status": "done"})
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = store.FindOne(ctx, "missing", map[string]any{"a": "b"})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestFindManyLimitAndFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.InsertOne(ctx, "tasks", Document{"owner_id": "alice"})
		require.NoError(t, err)
	}
	_, err := store.InsertOne(ctx, "tasks", Document{"owner_id": "bob"})
	require.NoError(t, err)

	docs, err := store.FindMany(ctx, "tasks", map[string]any{"owner_id": "alice"}, 100)
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	capped, err := store.FindMany(ctx, "tasks", map[string]any{"owner_id": "alice"}, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestUpdateOnePatchesFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.InsertOne(ctx, "tasks", Document{"title": "t", "status": "pending"})
	require.NoError(t, err)

	err = store.UpdateOne(ctx, "tasks", map[string]any{IDField: id}, map[string]any{"status": "done"})
	require.NoError(t, err)

	doc, err := store.FindOne(ctx, "tasks", map[string]any{IDField: id})
	require.NoError(t, err)
	assert.Equal(t, "done", doc["status"])
	assert.Equal(t, "t", doc["title"])

	// The id field is not patchable.
	err = store.UpdateOne(ctx, "tasks", map[string]any{IDField: id}, map[string]any{IDField: "hijacked"})
	require.NoError(t, err)
	doc, err = store.FindOne(ctx, "tasks", map[string]any{IDField: id})
	require.NoError(t, err)
	assert.Equal(t, id, doc[IDField])

	err = store.UpdateOne(ctx, "tasks", map[string]any{IDField: "nope"}, map[string]any{"status": "x"})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestDeleteOne(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.InsertOne(ctx, "tasks", Document{"title": "t"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteOne(ctx, "tasks", map[string]any{IDField: id}))

	_, err = store.FindOne(ctx, "tasks", map[string]any{IDField: id})
	assert.ErrorIs(t, err, ErrNoDocuments)

	err = store.DeleteOne(ctx, "tasks", map[string]any{IDField: id})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestUniqueIndex(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureUniqueIndex("users", "email"))

	_, err := store.InsertOne(ctx, "users", Document{"email": "a@x.com"})
	require.NoError(t, err)

	_, err = store.InsertOne(ctx, "users", Document{"email": "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Deleting releases the index entry for reuse.
	require.NoError(t, store.DeleteOne(ctx, "users", map[string]any{"email": "a@x.com"}))
	_, err = store.InsertOne(ctx, "users", Document{"email": "a@x.com"})
	assert.NoError(t, err)
}

func TestUniqueIndexOnUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureUniqueIndex("users", "email"))

	first, err := store.InsertOne(ctx, "users", Document{"email": "a@x.com"})
	require.NoError(t, err)
	_, err = store.InsertOne(ctx, "users", Document{"email": "b@x.com"})
	require.NoError(t, err)

	err = store.UpdateOne(ctx, "users", map[string]any{IDField: first}, map[string]any{"email": "b@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestCountAndPing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	count, err := store.Count(ctx, "tasks")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.InsertOne(ctx, "tasks", Document{"title": "t"})
	require.NoError(t, err)

	count, err = store.Count(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.InsertOne(ctx, "tasks", Document{"title": "t"})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "snap.db")
	require.NoError(t, store.Snapshot(ctx, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// The snapshot is a complete, openable database.
	restored, err := Open(dest, UUIDCodec{})
	require.NoError(t, err)
	defer restored.Close()

	docs, err := restored.FindMany(ctx, "tasks", nil, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUUIDCodec(t *testing.T) {
	codec := UUIDCodec{}

	id := codec.NewID()
	parsed, err := codec.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = codec.Parse("not-an-id")
	assert.Error(t, err)
}
