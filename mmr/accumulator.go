package mmr

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Accumulator maintains an mmr over a NodeStore.
//
// Appends are serialized by the Accumulator. Proofs and queries may run
// concurrently with each other and always observe the state between two
// appends.
type Accumulator struct {
	log    logger.Logger
	store  NodeStore
	hasher Hasher
	opts   AccumulatorOptions

	mu sync.RWMutex
}

func NewAccumulator(
	log logger.Logger, store NodeStore, hasher Hasher, opts ...AccumulatorOption,
) (*Accumulator, error) {

	a := &Accumulator{
		log:    log,
		store:  store,
		hasher: hasher,
	}
	for _, opt := range opts {
		opt(&a.opts)
	}
	if a.opts.pruneLeaves && a.opts.archive == nil {
		return nil, ErrArchiveRequired
	}
	if got, want := store.Size(), MMRSize(store.LeafCount()); got != want {
		return nil, fmt.Errorf(
			"%w: store size %d does not match %d leaves", ErrLeafCountInvalid, got, store.LeafCount())
	}
	return a, nil
}

func (a *Accumulator) Hasher() Hasher { return a.hasher }

// Root returns a copy of the root for the current leaf count
func (a *Accumulator) Root() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.store.LeafCount() == 0 {
		return EmptyRoot(a.hasher)
	}
	return bytes.Clone(a.store.Root())
}

// Head returns the leaf count and the root for that count as one consistent
// pair.
func (a *Accumulator) Head() (uint64, []byte) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	leafCount := a.store.LeafCount()
	if leafCount == 0 {
		return 0, EmptyRoot(a.hasher)
	}
	return leafCount, bytes.Clone(a.store.Root())
}

func (a *Accumulator) LeafCount() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store.LeafCount()
}

// Size returns the count of nodes, leaves and interior, in the mmr
func (a *Accumulator) Size() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store.Size()
}

// Peaks returns the zero based positions of the current peaks, highest first
func (a *Accumulator) Peaks() []uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return LeafPeaks(a.store.LeafCount())
}

func (a *Accumulator) PeakHashes() ([][]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return PeakHashes(a.storeGetter(context.Background()), a.store.Size())
}

// Append adds a leaf and returns its position. The leaf, the interior nodes
// it completes, the new leaf count and the new root are committed to the
// store together. On error the accumulator is unchanged.
func (a *Accumulator) Append(ctx context.Context, leaf Node) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	leafHash := leaf.Digest(a.hasher)

	buf := &appendBuffer{store: a.store, hasher: a.hasher, base: a.store.Size()}
	mmrSize, err := AddHashedLeaf(buf, a.hasher, leafHash)
	if err != nil {
		return 0, err
	}
	// AddHashedLeaf only deals in digests, the first buffered node is the leaf
	if !a.opts.pruneLeaves {
		buf.nodes[0] = leaf
	}

	peaks, err := PeakHashes(buf, mmrSize)
	if err != nil {
		return 0, err
	}
	batch := AppendBatch{
		Nodes:     buf.nodes,
		LeafCount: a.store.LeafCount() + 1,
		Root:      BagPeaks(a.hasher, peaks),
	}

	// The archive is written first. If the store commit then fails, the
	// archived leaf is unreachable and is overwritten by the next append.
	if a.opts.archive != nil && leaf.IsData() {
		if err = a.opts.archive.Put(ctx, buf.base, leaf); err != nil {
			return 0, fmt.Errorf("archive leaf %d: %w", buf.base, err)
		}
	}

	i, err := a.store.Append(batch)
	if err != nil {
		return 0, fmt.Errorf("append leaf %d: %w", batch.LeafCount-1, err)
	}
	a.log.Debugf("append: leaf=%d, i=%d, size=%d, root=%x", batch.LeafCount-1, i, mmrSize, batch.Root)
	return i, nil
}

// RootAt returns the root of the mmr when it had leafCount leaves. Nodes are
// never modified, so any earlier root can be recovered.
func (a *Accumulator) RootAt(leafCount uint64) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rootAt(context.Background(), leafCount)
}

func (a *Accumulator) rootAt(ctx context.Context, leafCount uint64) ([]byte, error) {
	if leafCount > a.store.LeafCount() {
		return nil, fmt.Errorf(
			"%w: %d, current leaf count %d", ErrLeafCountInvalid, leafCount, a.store.LeafCount())
	}
	if leafCount == a.store.LeafCount() && leafCount > 0 {
		return bytes.Clone(a.store.Root()), nil
	}
	peaks, err := PeakHashes(a.storeGetter(ctx), MMRSize(leafCount))
	if err != nil {
		return nil, err
	}
	return BagPeaks(a.hasher, peaks), nil
}

// GenerateProof returns the leaf data and an inclusion proof for leafIndex
// against the current root.
func (a *Accumulator) GenerateProof(ctx context.Context, leafIndex uint64) (Node, Proof, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generateProof(ctx, leafIndex, a.store.LeafCount())
}

// GenerateProofAt returns the leaf data and an inclusion proof for leafIndex
// against the root for leafCount leaves.
func (a *Accumulator) GenerateProofAt(ctx context.Context, leafIndex, leafCount uint64) (Node, Proof, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if leafCount > a.store.LeafCount() {
		return Node{}, Proof{}, fmt.Errorf(
			"%w: %d, current leaf count %d", ErrLeafCountInvalid, leafCount, a.store.LeafCount())
	}
	return a.generateProof(ctx, leafIndex, leafCount)
}

func (a *Accumulator) generateProof(ctx context.Context, leafIndex, leafCount uint64) (Node, Proof, error) {
	if leafIndex >= leafCount {
		return Node{}, Proof{}, fmt.Errorf(
			"%w: leaf %d, leaf count %d", ErrLeafIndexOutOfRange, leafIndex, leafCount)
	}
	leaf, err := a.getLeaf(ctx, MMRIndex(leafIndex))
	if err != nil {
		return Node{}, Proof{}, err
	}
	proof, err := InclusionProof(a.storeGetter(ctx), a.hasher, leafIndex, leafCount)
	if err != nil {
		return Node{}, Proof{}, err
	}
	a.log.Debugf("proof: leaf=%d, count=%d, items=%d", leafIndex, leafCount, len(proof.Items))
	return leaf, proof, nil
}

// getLeaf returns the leaf data at i, from the store if it holds the data or
// from the archive otherwise.
func (a *Accumulator) getLeaf(ctx context.Context, i uint64) (Node, error) {
	stored, ok, err := a.store.Get(i)
	if err != nil {
		return Node{}, err
	}
	if ok && stored.IsData() {
		return stored, nil
	}
	if a.opts.archive == nil {
		return Node{}, fmt.Errorf("%w: leaf data at %d, no archive", ErrMissingArchivedData, i)
	}
	archived, found, err := a.opts.archive.Get(ctx, i)
	if err != nil {
		return Node{}, err
	}
	if !found || !archived.IsData() {
		return Node{}, fmt.Errorf("%w: leaf data at %d", ErrMissingArchivedData, i)
	}
	if ok && !bytes.Equal(archived.Digest(a.hasher), stored.Digest(a.hasher)) {
		return Node{}, fmt.Errorf("%w: at %d", ErrArchiveMismatch, i)
	}
	return archived, nil
}

// VerifyLeaf verifies the proof against the root this accumulator had at
// proof.LeafCount.
func (a *Accumulator) VerifyLeaf(leaf Node, proof Proof) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if proof.LeafCount > a.store.LeafCount() {
		return fmt.Errorf("%w: leaf count %d is ahead of the mmr", ErrMalformedProof, proof.LeafCount)
	}
	root, err := a.rootAt(context.Background(), proof.LeafCount)
	if err != nil {
		return err
	}
	return VerifyProof(a.hasher, root, leaf, proof)
}

// ConsistencyProof proves that the current mmr, or any earlier state of
// leafCountB leaves, extends the state of leafCountA leaves.
func (a *Accumulator) ConsistencyProof(ctx context.Context, leafCountA, leafCountB uint64) (ConsistencyProof, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if leafCountB > a.store.LeafCount() {
		return ConsistencyProof{}, fmt.Errorf(
			"%w: %d, current leaf count %d", ErrLeafCountInvalid, leafCountB, a.store.LeafCount())
	}
	return IndexConsistencyProof(a.storeGetter(ctx), leafCountA, leafCountB)
}

func (a *Accumulator) storeGetter(ctx context.Context) indexStoreGetter {
	return &archiveGetter{ctx: ctx, store: a.store, archive: a.opts.archive, hasher: a.hasher}
}

// archiveGetter provides node digests from the store, falling back to the
// archive for nodes the store does not hold.
type archiveGetter struct {
	ctx     context.Context
	store   NodeStore
	archive Archive
	hasher  Hasher
}

func (g *archiveGetter) Get(i uint64) ([]byte, error) {
	n, ok, err := g.store.Get(i)
	if err != nil {
		return nil, err
	}
	if ok {
		return n.Digest(g.hasher), nil
	}
	if g.archive == nil {
		return nil, fmt.Errorf("%w: node %d", ErrMissingArchivedData, i)
	}
	n, ok, err = g.archive.Get(g.ctx, i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrMissingArchivedData, i)
	}
	return n.Digest(g.hasher), nil
}

// appendBuffer collects the nodes of a single append so that they can be
// committed to the store in one batch.
type appendBuffer struct {
	store  NodeStore
	hasher Hasher
	base   uint64
	nodes  []Node
}

func (b *appendBuffer) Get(i uint64) ([]byte, error) {
	if i >= b.base {
		if i-b.base >= uint64(len(b.nodes)) {
			return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, i)
		}
		return b.nodes[i-b.base].Digest(b.hasher), nil
	}
	n, ok, err := b.store.Get(i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, i)
	}
	return n.Digest(b.hasher), nil
}

// Append returns the size after adding value, as AddHashedLeaf requires
func (b *appendBuffer) Append(value []byte) (uint64, error) {
	b.nodes = append(b.nodes, NewHashNode(value))
	return b.base + uint64(len(b.nodes)), nil
}
