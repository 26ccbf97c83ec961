package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/collab/internal/domain"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{"username": "alice"}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc["username"])

	// Mutating the returned document must not leak into the store.
	doc["username"] = "mallory"
	again, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again["username"])
}

func TestMemoryGetAbsent(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "users", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryUnionAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "projects", "p1", Document{"members": []any{"a"}}))

	require.NoError(t, store.UnionAppend(ctx, "projects", "p1", "members", "b"))
	require.NoError(t, store.UnionAppend(ctx, "projects", "p1", "members", "b"))

	doc, err := store.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, doc["members"])
}

func TestMemoryUnionAppendObjects(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "notifications", "u1", Document{"invitations": []any{}}))

	inv := map[string]any{"projectId": "p1", "sender": "a", "status": "pending"}
	require.NoError(t, store.UnionAppend(ctx, "notifications", "u1", "invitations", inv))
	require.NoError(t, store.UnionAppend(ctx, "notifications", "u1", "invitations", inv))

	doc, err := store.Get(ctx, "notifications", "u1")
	require.NoError(t, err)
	assert.Len(t, doc["invitations"], 1)
}

func TestMemoryUnionAppendMissingField(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "projects", "p1", Document{}))

	require.NoError(t, store.UnionAppend(ctx, "projects", "p1", "members", "a"))

	doc, err := store.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, doc["members"])
}

func TestMemoryArrayRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "projects", "p1", Document{"members": []any{"a", "b", "a"}}))

	require.NoError(t, store.ArrayRemove(ctx, "projects", "p1", "members", "a"))

	doc, err := store.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, doc["members"])

	// Removing an absent element is a no-op.
	require.NoError(t, store.ArrayRemove(ctx, "projects", "p1", "members", "z"))
	doc, err = store.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, doc["members"])
}

func TestMemoryUpdateFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "projects", "p1", Document{"name": "Sprint1", "progress": float64(0)}))

	require.NoError(t, store.UpdateFields(ctx, "projects", "p1", Document{"progress": 40}))

	doc, err := store.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Sprint1", doc["name"])
	assert.Equal(t, float64(40), doc["progress"])

	err = store.UpdateFields(ctx, "projects", "missing", Document{"progress": 40})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "projects", "p1", Document{"name": "Sprint1"}))

	require.NoError(t, store.Delete(ctx, "projects", "p1"))
	_, err := store.Get(ctx, "projects", "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent document is not an error.
	require.NoError(t, store.Delete(ctx, "projects", "p1"))
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "users", "u1", Document{"username": "alice"}))
	require.NoError(t, store.Set(ctx, "users", "u2", Document{"username": "bob"}))

	entries, err := store.List(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = store.List(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
