package signedroots

import (
	"github.com/datatrails/go-datatrails-mmr/mmr"
)

type MMRState struct {
	// The size of the mmr defines the path to the root (and the full structure
	// of the tree). Note that all subsequent mmr states whose size is *greater*
	// than this, can also (efficiently) reproduce this particular root, and
	// hence can be used to verify 'old' proofs. This property is due to the
	// strict append only structure of the tree.
	MMRSize uint64 `cbor:"1,keyasint"`
	Root    []byte `cbor:"2,keyasint"`
	// Timestamp is the unix time read at the time the root was signed.
	// Including it allows for the same root to be re-signed.
	Timestamp int64 `cbor:"3,keyasint"`
	// LeafCount is the number of leaves committed by Root
	LeafCount uint64 `cbor:"4,keyasint"`
}

// StateFor returns the state of the accumulator for signing. The root,
// leaf count and size are read under one lock so they always agree.
func StateFor(acc *mmr.Accumulator, timestamp int64) MMRState {
	leafCount, root := acc.Head()
	return MMRState{
		MMRSize:   mmr.MMRSize(leafCount),
		LeafCount: leafCount,
		Root:      root,
		Timestamp: timestamp,
	}
}
