package archive

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/datatrails/go-datatrails-mmr/nodestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

func testLog() logger.Logger {
	logger.New("TEST")
	return logger.Sugar.WithServiceName("archive")
}

func TestLevelDBArchive(t *testing.T) {
	ctx := context.Background()
	log := testLog()

	tests := []struct {
		name string
		open func(t *testing.T) *LevelDBArchive
	}{
		{"memory", func(t *testing.T) *LevelDBArchive {
			a, err := OpenLevelDBArchive(log, "")
			require.NoError(t, err)
			return a
		}},
		{"file", func(t *testing.T) *LevelDBArchive {
			a, err := OpenLevelDBArchive(log, t.TempDir())
			require.NoError(t, err)
			return a
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.open(t)
			defer a.Close()

			_, ok, err := a.Get(ctx, 3)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, a.Put(ctx, 3, mmr.NewDataNode([]byte("three"))))
			n, ok, err := a.Get(ctx, 3)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, n.IsData())
			assert.Equal(t, []byte("three"), n.Value())

			// a later put for the same position replaces the earlier one
			require.NoError(t, a.Put(ctx, 3, mmr.NewDataNode([]byte("again"))))
			n, _, err = a.Get(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, []byte("again"), n.Value())
		})
	}
}

func TestLevelDBArchiveSyncsByDefault(t *testing.T) {
	log := testLog()
	a, err := OpenLevelDBArchive(log, "")
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.opts.writeOptions().Sync)

	b, err := OpenLevelDBArchive(log, "", WithNoSync())
	require.NoError(t, err)
	defer b.Close()
	assert.False(t, b.opts.writeOptions().Sync)
}

func TestLevelDBArchiveCancelled(t *testing.T) {
	a, err := OpenLevelDBArchive(testLog(), "")
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Put(ctx, 0, mmr.NewDataNode([]byte("x"))), context.Canceled)
	_, _, err = a.Get(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLevelDBArchiveClosed(t *testing.T) {
	a, err := OpenLevelDBArchive(testLog(), "")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	require.ErrorIs(t, a.Put(context.Background(), 0, mmr.NewDataNode([]byte("x"))), ErrArchiveClosed)
	_, _, err = a.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrArchiveClosed)
}

func TestLevelDBArchiveCorrupt(t *testing.T) {
	a, err := OpenLevelDBArchive(testLog(), "")
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.db.Put(nodestore.ArchiveTable.Key(nil, 1), []byte{7, 1, 2}, &opt.WriteOptions{}))
	_, _, err = a.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrNodeDataCorrupt)
}

// TestPrunedLeavesSharedDatabase runs an accumulator that keeps only leaf
// digests in the node store, with the leaf data archived in the same
// database.
func TestPrunedLeavesSharedDatabase(t *testing.T) {
	ctx := context.Background()
	log := testLog()
	hasher := mmr.NewKeccak256Hasher()

	dir := t.TempDir()
	store, err := nodestore.OpenLevelDBStore(log, dir)
	require.NoError(t, err)
	arch := NewLevelDBArchive(log, store.DB())

	acc, err := mmr.NewAccumulator(log, store, hasher, mmr.WithArchive(arch), mmr.WithLeafPruning())
	require.NoError(t, err)

	leaves := []string{"genesis", "block-1", "block-2", "block-3", "block-4"}
	for _, l := range leaves {
		_, err = acc.Append(ctx, mmr.NewDataNode([]byte(l)))
		require.NoError(t, err)
	}

	for i, l := range leaves {
		pos := mmr.MMRIndex(uint64(i))
		stored, ok, err := store.Get(pos)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, stored.IsData(), "leaf %d should be held as a digest", i)

		leaf, proof, err := acc.GenerateProof(ctx, uint64(i))
		require.NoError(t, err)
		assert.Equal(t, []byte(l), leaf.Value())
		require.NoError(t, mmr.VerifyProof(hasher, acc.Root(), leaf, proof))
	}

	// the archive does not own the shared database
	require.NoError(t, arch.Close())
	require.NoError(t, store.Close())
}
