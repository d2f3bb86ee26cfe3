package dbmove

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arikos/dbmove/dialect"
)

func newSQLiteVersionStore(t *testing.T) (*VersionStore, func(ctx context.Context) Executor) {
	t.Helper()
	db := newTestDB(t)
	d, err := dialect.Lookup(string(dialect.SQLite))
	require.NoError(t, err)

	store := NewVersionStore(db, d)
	require.NoError(t, store.Ensure(context.Background()))
	return store, func(context.Context) Executor { return db }
}

func TestVersionStoreEnsureIsIdempotent(t *testing.T) {
	store, _ := newSQLiteVersionStore(t)
	require.NoError(t, store.Ensure(context.Background()))
}

func TestVersionStoreLoadOnEmptyTable(t *testing.T) {
	store, _ := newSQLiteVersionStore(t)
	applied, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, store.Has(1))
	assert.Equal(t, uint64(0), store.MaxApplied())
}

func TestVersionStoreRecordThenHasAndMaxApplied(t *testing.T) {
	ctx := context.Background()
	store, exec := newSQLiteVersionStore(t)

	require.NoError(t, store.Record(ctx, exec(ctx), 1, "create widgets"))
	require.NoError(t, store.Record(ctx, exec(ctx), 5, "add index"))

	assert.True(t, store.Has(1))
	assert.True(t, store.Has(5))
	assert.False(t, store.Has(2))
	assert.Equal(t, uint64(5), store.MaxApplied())
}

func TestVersionStoreLoadReflectsPriorRunsUnion(t *testing.T) {
	ctx := context.Background()
	store, exec := newSQLiteVersionStore(t)
	require.NoError(t, store.Record(ctx, exec(ctx), 1, "create widgets"))

	// Load again against the same db, simulating a fresh run picking up
	// what a prior run recorded.
	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, reloaded, uint64(1))
}
