package mmr

import (
	"fmt"
	"math/bits"
)

// Proof shows the inclusion of the leaf LeafIndex in the mmr of LeafCount
// leaves.
//
// Items holds, in order, the siblings on the path from the leaf to its peak,
// the bagged digest of the peaks to the left of that peak (when there are
// any), and then each peak to the right of it. The direction of each path
// step is implied by the leaf position, so it is not encoded.
//
// This ordering is the interoperability contract. The root is the left fold
// of the peaks, highest first (see BagPeaks), and a verifier reproduces it as
//
//	root = fold(Combine(leftBag, leafPeak), rightPeaks...)
//
// Peaks on both sides of the leaf can not share a single aggregate item,
// because the fold is not associative. So for 7 leaves the proof of leaf 0
// has 4 items (2 siblings and the 2 peaks to its right) while leaf 6 has 1
// (the bag of the 2 peaks to its left). ProofLen gives the count for any
// leaf, and proofs of any other length are rejected.
type Proof struct {
	LeafIndex uint64   `cbor:"1,keyasint"`
	LeafCount uint64   `cbor:"2,keyasint"`
	Items     [][]byte `cbor:"3,keyasint"`
}

// ProofLen returns the item count of a proof for leafIndex against leafCount.
// ok is false if leafIndex is not below leafCount.
func ProofLen(leafIndex, leafCount uint64) (int, bool) {
	iPeak, height, ok := LeafPeak(leafIndex, leafCount)
	if !ok {
		return 0, false
	}
	n := int(height)
	if iPeak > 0 {
		n++
	}
	return n + bits.OnesCount64(leafCount) - iPeak - 1, true
}

// InclusionProof creates the proof for leafIndex in the mmr of leafCount
// leaves. All nodes of that mmr must be available from store.
func InclusionProof(store indexStoreGetter, hasher Hasher, leafIndex, leafCount uint64) (Proof, error) {

	iPeak, _, ok := LeafPeak(leafIndex, leafCount)
	if !ok {
		return Proof{}, fmt.Errorf(
			"%w: leaf %d, leaf count %d", ErrLeafIndexOutOfRange, leafIndex, leafCount)
	}
	mmrSize := MMRSize(leafCount)

	items, err := IndexProof(mmrSize, store, MMRIndex(leafIndex))
	if err != nil {
		return Proof{}, err
	}

	peaks, err := PeakHashes(store, mmrSize)
	if err != nil {
		return Proof{}, err
	}
	if iPeak > 0 {
		items = append(items, BagPeaks(hasher, peaks[:iPeak]))
	}
	items = append(items, peaks[iPeak+1:]...)

	return Proof{LeafIndex: leafIndex, LeafCount: leafCount, Items: items}, nil
}

// IndexProofPath collects the merkle root proof for the local MMR peak containing index i
//
// So for the following index tree, and i=15 with mmrSize = 26 we would obtain the path
//
// [H(16), H(20)]
//
// Because the local peak is 21, and given the value for 15, we only need 16 and
// then 20 to prove the local root.
//
//	3              14
//	             /    \
//	            /      \
//	           /        \
//	          /          \
//	2        6            13           21
//	       /   \        /    \
//	1     2     5      9     12     17     20     24
//	     / \   / \    / \   /  \   /  \
//	0   0   1 3   4  7   8 10  11 15  16 18  19 22  23   25
//
// The local peak index and its height are returned with the path.
func IndexProofPath(mmrSize uint64, store indexStoreGetter, i uint64) ([][]byte, uint64, uint64, error) {

	var iSibling uint64
	var iLocalPeak uint64

	var proof [][]byte
	heightIndex := IndexHeight(i) // allows for proofs of interior nodes

	for { // iSibling is guaranteed to break the loop

		iLocalPeak = i

		if IndexHeight(i+1) > heightIndex {
			iSibling = i - SiblingOffset(heightIndex)
			i += 1 // move i to parent
		} else {
			iSibling = i + SiblingOffset(heightIndex)
			i += ParentOffset(heightIndex) // move i to parent
		}

		if iSibling >= mmrSize {
			return proof, iLocalPeak, heightIndex, nil
		}

		value, err := store.Get(iSibling)
		if err != nil {
			return nil, 0, heightIndex, err
		}
		proof = append(proof, value)

		heightIndex += 1
	}
}

// IndexProof is a convenience wrapper for IndexProofPath
// For circumstances where the peak index and the peak height are not required by the caller
func IndexProof(mmrSize uint64, store indexStoreGetter, i uint64) ([][]byte, error) {
	proof, _, _, err := IndexProofPath(mmrSize, store, i)
	return proof, err
}

// LocalPeak returns the index of the peak committing node i in the mmr of
// mmrSize nodes, and the length of the path from i to it.
func LocalPeak(mmrSize uint64, i uint64) (uint64, int) {
	heightIndex := IndexHeight(i)
	d := 0
	for {
		var iSibling, iParent uint64
		if IndexHeight(i+1) > heightIndex {
			iSibling = i - SiblingOffset(heightIndex)
			iParent = i + 1
		} else {
			iSibling = i + SiblingOffset(heightIndex)
			iParent = i + ParentOffset(heightIndex)
		}
		if iSibling >= mmrSize {
			return i, d
		}
		i = iParent
		heightIndex++
		d++
	}
}
