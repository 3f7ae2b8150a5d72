package mmr

import (
	"bytes"
	"errors"
)

var (
	ErrAccumulatorProofLen = errors.New("a proof for each accumulator is required")
)

// ConsistentRoots is supplied with the accumulator from which consistency is
// being shown, and an inclusion path for each accumulator entry in a future
// MMR state.
//
// It recovers the prefix of the future accumulator against which the paths
// were obtained. Many peaks of the earlier accumulator are typically committed
// by the same peak in the future one, so the returned list has no repeats. It
// is in descending height order.
func ConsistentRoots(hasher Hasher, leafCountFrom uint64, accumulatorFrom [][]byte, paths [][][]byte) ([][]byte, error) {
	fromPeaks := LeafPeaks(leafCountFrom)

	if len(fromPeaks) != len(paths) || len(fromPeaks) != len(accumulatorFrom) {
		return nil, ErrAccumulatorProofLen
	}

	roots := [][]byte{}

	for i := range accumulatorFrom {
		root := IncludedRoot(hasher, fromPeaks[i], accumulatorFrom[i], paths[i])
		if len(roots) > 0 && bytes.Equal(roots[len(roots)-1], root) {
			continue
		}
		roots = append(roots, root)
	}

	return roots, nil
}
