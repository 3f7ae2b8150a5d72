package mmr

import "context"

// AppendBatch is the complete effect of adding one leaf: the leaf and any
// interior nodes it completes, together with the new leaf count and root.
type AppendBatch struct {
	Nodes     []Node
	LeafCount uint64
	Root      []byte
}

// NodeStore is the append only node storage behind an Accumulator.
//
// Append must write batch.Nodes at positions Size(), Size()+1, ... and
// replace LeafCount and Root in a single durable step. It returns the position
// of the first node written. If Append fails no part of the batch may be
// observable. Get reports false only for positions that were never written.
type NodeStore interface {
	Get(i uint64) (Node, bool, error)
	Size() uint64
	LeafCount() uint64
	Root() []byte
	Append(batch AppendBatch) (uint64, error)
}

// Archive keeps full leaf data outside of the authenticated store, keyed by
// node position. Its content is not trusted. Leaf data read from it is checked
// against the digest held by the NodeStore.
type Archive interface {
	Put(ctx context.Context, i uint64, n Node) error
	Get(ctx context.Context, i uint64) (Node, bool, error)
}

type indexStoreGetter interface {
	Get(i uint64) ([]byte, error)
}

type nodeAppender interface {
	indexStoreGetter
	Append(value []byte) (uint64, error)
}
