package mmr

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorEmpty(t *testing.T) {
	acc := newTestAccumulator(t, NewTestDb(t))

	assert.Equal(t, uint64(0), acc.LeafCount())
	assert.Equal(t, make([]byte, 32), acc.Root())
	assert.Empty(t, acc.Peaks())
	leafCount, root := acc.Head()
	assert.Equal(t, uint64(0), leafCount)
	assert.Equal(t, EmptyRoot(acc.Hasher()), root)

	_, _, err := acc.GenerateProof(context.Background(), 0)
	assert.ErrorIs(t, err, ErrLeafIndexOutOfRange)
}

func TestAccumulatorAppend(t *testing.T) {
	ctx := context.Background()
	db := NewTestDb(t)
	acc := newTestAccumulator(t, db)
	hasher := acc.Hasher()

	leaf0, leaf1, leaf2 := numberedLeaf(0), numberedLeaf(1), numberedLeaf(2)
	d0, d1, d2 := leaf0.Digest(hasher), leaf1.Digest(hasher), leaf2.Digest(hasher)

	i, err := acc.Append(ctx, leaf0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), i)
	assert.Equal(t, d0, acc.Root(), "a single leaf is its own root")

	i, err = acc.Append(ctx, leaf1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), i)
	assert.Equal(t, hasher.Combine(d0, d1), acc.Root())
	assert.Equal(t, uint64(3), acc.Size())

	i, err = acc.Append(ctx, leaf2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), i)
	assert.Equal(t, uint64(3), acc.LeafCount())
	assert.Equal(t, []uint64{2, 3}, acc.Peaks())

	peaks, err := acc.PeakHashes()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{hasher.Combine(d0, d1), d2}, peaks)
	assert.Equal(t, hasher.Combine(hasher.Combine(d0, d1), d2), acc.Root())
	leafCount, root := acc.Head()
	assert.Equal(t, uint64(3), leafCount)
	assert.Equal(t, acc.Root(), root)

	// leaves keep their data, the interior node is a digest
	n, ok, err := db.Get(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, leaf0, n)
	n, ok, err = db.Get(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewHashNode(hasher.Combine(d0, d1)), n)
}

func TestAccumulatorRootIsCopied(t *testing.T) {
	acc := newTestAccumulator(t, NewTestDb(t))
	appendLeaves(t, acc, 0, 5)
	want := acc.Root()

	mutate := func(b []byte) {
		for i := range b {
			b[i] ^= 0xff
		}
	}
	mutate(acc.Root())
	_, root := acc.Head()
	mutate(root)
	root, err := acc.RootAt(5)
	require.NoError(t, err)
	mutate(root)

	assert.Equal(t, want, acc.Root())
	leaf, proof, err := acc.GenerateProof(context.Background(), 3)
	require.NoError(t, err)
	assert.NoError(t, acc.VerifyLeaf(leaf, proof))
}

func TestAccumulatorPositions(t *testing.T) {
	ctx := context.Background()
	acc := newTestAccumulator(t, NewTestDb(t))
	for leafIndex := uint64(0); leafIndex < 70; leafIndex++ {
		i, err := acc.Append(ctx, numberedLeaf(leafIndex))
		require.NoError(t, err)
		assert.Equal(t, MMRIndex(leafIndex), i)
		assert.Equal(t, MMRSize(leafIndex+1), acc.Size())
		assert.Equal(t, LeafPeaks(leafIndex+1), acc.Peaks())
	}
}

// TestAccumulatorDeterminism checks that the root after each append matches a
// root computed from scratch for the same leaves.
func TestAccumulatorDeterminism(t *testing.T) {
	ctx := context.Background()
	acc := newTestAccumulator(t, NewTestDb(t))
	hasher := acc.Hasher()

	var digests [][]byte
	for leafIndex := uint64(0); leafIndex < 65; leafIndex++ {
		leaf := numberedLeaf(leafIndex)
		_, err := acc.Append(ctx, leaf)
		require.NoError(t, err)
		digests = append(digests, leaf.Digest(hasher))

		assert.Equal(t, referenceRoot(hasher, digests), acc.Root(), "%d leaves", leafIndex+1)

		rebuilt := newTestAccumulator(t, NewTestDb(t))
		appendLeaves(t, rebuilt, 0, leafIndex+1)
		assert.Equal(t, rebuilt.Root(), acc.Root())
	}
}

func TestAccumulatorAppendFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := NewTestDb(t)
	acc := newTestAccumulator(t, db)
	appendLeaves(t, acc, 0, 3)

	root, size := acc.Root(), acc.Size()

	db.failAppend = errors.New("disk full")
	_, err := acc.Append(ctx, numberedLeaf(3))
	require.Error(t, err)
	assert.Equal(t, uint64(3), acc.LeafCount())
	assert.Equal(t, root, acc.Root())
	assert.Equal(t, size, acc.Size())

	db.failAppend = nil
	appendLeaves(t, acc, 3, 1)

	fresh := newTestAccumulator(t, NewTestDb(t))
	appendLeaves(t, fresh, 0, 4)
	assert.Equal(t, fresh.Root(), acc.Root())
}

func TestAccumulatorArchiveFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	archive := newTestArchive()
	acc := newTestAccumulator(t, NewTestDb(t), WithArchive(archive))
	appendLeaves(t, acc, 0, 2)
	root := acc.Root()

	archive.failPut = errors.New("archive unavailable")
	_, err := acc.Append(ctx, numberedLeaf(2))
	require.Error(t, err)
	assert.Equal(t, uint64(2), acc.LeafCount())
	assert.Equal(t, root, acc.Root())
}

func TestNewAccumulatorOptions(t *testing.T) {
	logger.New("TEST")
	log := logger.Sugar.WithServiceName("mmr")

	_, err := NewAccumulator(log, NewTestDb(t), NewBlake2b256Hasher(), WithLeafPruning())
	assert.ErrorIs(t, err, ErrArchiveRequired)

	db := NewTestDb(t)
	db.leafCount = 2
	_, err = NewAccumulator(log, db, NewBlake2b256Hasher())
	assert.ErrorIs(t, err, ErrLeafCountInvalid)
}

func TestAccumulatorLeafPruning(t *testing.T) {
	ctx := context.Background()
	db := NewTestDb(t)
	archive := newTestArchive()
	acc := newTestAccumulator(t, db, WithArchive(archive), WithLeafPruning())
	hasher := acc.Hasher()

	leaves := appendLeaves(t, acc, 0, 11)

	unpruned := newTestAccumulator(t, NewTestDb(t))
	appendLeaves(t, unpruned, 0, 11)
	assert.Equal(t, unpruned.Root(), acc.Root(), "pruning does not change the root")

	for leafIndex, leaf := range leaves {
		i := MMRIndex(uint64(leafIndex))
		stored, ok, err := db.Get(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, NewHashNode(leaf.Digest(hasher)), stored)
		assert.Equal(t, leaf, archive.nodes[i])

		got, proof, err := acc.GenerateProof(ctx, uint64(leafIndex))
		require.NoError(t, err)
		assert.Equal(t, leaf, got, "the leaf data comes from the archive")
		assert.NoError(t, VerifyProof(hasher, acc.Root(), got, proof))
	}

	delete(archive.nodes, MMRIndex(4))
	_, _, err := acc.GenerateProof(ctx, 4)
	assert.ErrorIs(t, err, ErrMissingArchivedData)

	archive.nodes[MMRIndex(5)] = numberedLeaf(99)
	_, _, err = acc.GenerateProof(ctx, 5)
	assert.ErrorIs(t, err, ErrArchiveMismatch)
}

func TestAccumulatorProofFromArchive(t *testing.T) {
	ctx := context.Background()
	db := NewTestDb(t)
	archive := newTestArchive()
	acc := newTestAccumulator(t, db, WithArchive(archive))
	appendLeaves(t, acc, 0, 4)

	// leaf 1 is the sibling of leaf 0, it is recovered from the archive
	db.prune(MMRIndex(1))
	leaf, proof, err := acc.GenerateProof(ctx, 0)
	require.NoError(t, err)
	assert.NoError(t, VerifyProof(acc.Hasher(), acc.Root(), leaf, proof))

	// and its own data too
	leaf, proof, err = acc.GenerateProof(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, numberedLeaf(1), leaf)
	assert.NoError(t, VerifyProof(acc.Hasher(), acc.Root(), leaf, proof))

	// interior nodes are never archived
	db.prune(2)
	_, _, err = acc.GenerateProof(ctx, 3)
	assert.ErrorIs(t, err, ErrMissingArchivedData)
}

func TestAccumulatorMissingLeafDataWithoutArchive(t *testing.T) {
	ctx := context.Background()
	acc := newTestAccumulator(t, NewTestDb(t))
	hasher := acc.Hasher()

	_, err := acc.Append(ctx, NewHashNode(hasher.Digest([]byte("only the digest"))))
	require.NoError(t, err)

	_, _, err = acc.GenerateProof(ctx, 0)
	assert.ErrorIs(t, err, ErrMissingArchivedData)
}

func TestAccumulatorRootAt(t *testing.T) {
	acc := newTestAccumulator(t, NewTestDb(t))

	roots := [][]byte{acc.Root()}
	for leafIndex := uint64(0); leafIndex < 20; leafIndex++ {
		appendLeaves(t, acc, leafIndex, 1)
		roots = append(roots, acc.Root())
	}
	for leafCount, want := range roots {
		got, err := acc.RootAt(uint64(leafCount))
		require.NoError(t, err)
		assert.Equal(t, want, got, "root at %d leaves", leafCount)
	}
	_, err := acc.RootAt(21)
	assert.ErrorIs(t, err, ErrLeafCountInvalid)
}

func TestAccumulatorConcurrentProofs(t *testing.T) {
	ctx := context.Background()
	acc := newTestAccumulator(t, NewTestDb(t))
	appendLeaves(t, acc, 0, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for leafIndex := uint64(8); leafIndex < 40; leafIndex++ {
			_, err := acc.Append(ctx, numberedLeaf(leafIndex))
			assert.NoError(t, err)
		}
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				leafIndex := uint64((w*50 + n) % 8)
				leaf, proof, err := acc.GenerateProof(ctx, leafIndex)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, acc.VerifyLeaf(leaf, proof))
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, uint64(40), acc.LeafCount())
}
