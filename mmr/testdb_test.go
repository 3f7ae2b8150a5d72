package mmr

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/require"
)

type testDb struct {
	t         *testing.T
	nodes     map[uint64]Node
	next      uint64
	leafCount uint64
	root      []byte

	failAppend error
}

func NewTestDb(t *testing.T) *testDb {
	db := testDb{
		t: t, nodes: make(map[uint64]Node),
		next: uint64(0),
	}
	return &db
}

func (db *testDb) Get(i uint64) (Node, bool, error) {
	n, ok := db.nodes[i]
	return n, ok, nil
}

func (db *testDb) Size() uint64      { return db.next }
func (db *testDb) LeafCount() uint64 { return db.leafCount }
func (db *testDb) Root() []byte      { return db.root }

func (db *testDb) Append(batch AppendBatch) (uint64, error) {
	if db.failAppend != nil {
		return 0, db.failAppend
	}
	first := db.next
	for _, n := range batch.Nodes {
		db.nodes[db.next] = n
		db.next++
	}
	db.leafCount = batch.LeafCount
	db.root = batch.Root
	return first, nil
}

// prune removes a node, as a store that discards history would
func (db *testDb) prune(i uint64) {
	delete(db.nodes, i)
}

type testArchive struct {
	nodes   map[uint64]Node
	failPut error
}

func newTestArchive() *testArchive {
	return &testArchive{nodes: make(map[uint64]Node)}
}

func (a *testArchive) Put(ctx context.Context, i uint64, n Node) error {
	if a.failPut != nil {
		return a.failPut
	}
	a.nodes[i] = n
	return nil
}

func (a *testArchive) Get(ctx context.Context, i uint64) (Node, bool, error) {
	n, ok := a.nodes[i]
	return n, ok, nil
}

func numberedLeaf(i uint64) Node {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return NewDataNode(b)
}

func newTestAccumulator(t *testing.T, db NodeStore, opts ...AccumulatorOption) *Accumulator {
	logger.New("TEST")
	acc, err := NewAccumulator(logger.Sugar.WithServiceName("mmr"), db, NewBlake2b256Hasher(), opts...)
	require.NoError(t, err)
	return acc
}

// appendLeaves adds numbered leaves first, first+1, ... first+n-1
func appendLeaves(t *testing.T, acc *Accumulator, first, n uint64) []Node {
	var leaves []Node
	for i := first; i < first+n; i++ {
		leaf := numberedLeaf(i)
		_, err := acc.Append(context.Background(), leaf)
		require.NoError(t, err)
		leaves = append(leaves, leaf)
	}
	return leaves
}

func perfectRoot(hasher Hasher, digests [][]byte) []byte {
	if len(digests) == 1 {
		return digests[0]
	}
	mid := len(digests) / 2
	return hasher.Combine(perfectRoot(hasher, digests[:mid]), perfectRoot(hasher, digests[mid:]))
}

// referenceRoot computes the root directly from the leaf digests, splitting
// them into perfect trees according to the bits of the leaf count.
func referenceRoot(hasher Hasher, digests [][]byte) []byte {
	var peaks [][]byte
	n := uint64(len(digests))
	start := uint64(0)
	for h := 63; h >= 0; h-- {
		size := uint64(1) << h
		if n&size == 0 {
			continue
		}
		peaks = append(peaks, perfectRoot(hasher, digests[start:start+size]))
		start += size
	}
	return BagPeaks(hasher, peaks)
}
