package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id, source string, index int, vector ...float32) domain.IndexRecord {
	return domain.IndexRecord{
		Vector: vector,
		Chunk: domain.Chunk{
			ID:             id,
			SourceDocument: source,
			PageNumber:     1,
			Index:          index,
			StartOffset:    index * 10,
			EndOffset:      index*10 + 8,
			Text:           "chunk " + id,
		},
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved := []domain.IndexRecord{
		testRecord("a", "/corpus/one.txt", 0, 0.25, -1.5, 3),
		testRecord("b", "/corpus/one.txt", 1, 0, 1, 0),
	}
	require.NoError(t, store.SaveRecords(ctx, saved))

	loaded, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, saved, loaded)
}

func TestLoadPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, []domain.IndexRecord{
		testRecord("first", "/a.txt", 0, 1),
	}))
	require.NoError(t, store.SaveRecords(ctx, []domain.IndexRecord{
		testRecord("second", "/b.txt", 0, 2),
		testRecord("third", "/b.txt", 1, 3),
	}))

	loaded, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "first", loaded[0].Chunk.ID)
	assert.Equal(t, "second", loaded[1].Chunk.ID)
	assert.Equal(t, "third", loaded[2].Chunk.ID)
}

func TestLoadEmptyStore(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDeleteBySource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, []domain.IndexRecord{
		testRecord("a", "/keep.txt", 0, 1),
		testRecord("b", "/drop.txt", 0, 2),
		testRecord("c", "/drop.txt", 1, 3),
	}))

	require.NoError(t, store.DeleteBySource(ctx, "/drop.txt"))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	loaded, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "/keep.txt", loaded[0].Chunk.SourceDocument)
}

func TestCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.SaveRecords(ctx, []domain.IndexRecord{
		testRecord("a", "/x.txt", 0, 1),
		testRecord("b", "/x.txt", 1, 2),
	}))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRecords(ctx, []domain.IndexRecord{
		testRecord("a", "/x.txt", 0, 0.5, 0.5),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []float32{0.5, 0.5}, loaded[0].Vector)
}

func TestVectorEncodingRoundTrip(t *testing.T) {
	vec := []float32{0, 1, -1, 0.123456, 1e-9, 3.4e38}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
