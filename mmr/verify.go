package mmr

import (
	"bytes"
	"fmt"
)

// IncludedRoot calculates the accumulator peak for the provided path and node
// value. Both interior and leaf nodes are handled identically.
//
// Arguments:
//   - i is the index the nodeHash is to be shown at
//   - nodeHash the value whose inclusion is to be shown
//   - proof is the path of sibling values committing i. They recreate the unique
//     accumulator peak that committed i to the MMR state from which the proof was
//     produced.
func IncludedRoot(hasher Hasher, i uint64, nodeHash []byte, proof [][]byte) []byte {

	root := nodeHash

	g := IndexHeight(i)

	for _, sibling := range proof {

		// If the index after i is higher, it is the parent and i is the right
		// sibling
		if IndexHeight(i+1) > g {
			i = i + 1
			root = hasher.Combine(sibling, root)
		} else {
			// The parent of a left sibling is stored immediately after
			// its right sibling.
			i = i + ParentOffset(g)
			root = hasher.Combine(root, sibling)
		}

		g = g + 1
	}

	return root
}

// ProofRoot returns the root reproduced by proof for the leaf digest
// leafHash. It fails with ErrMalformedProof if the proof shape does not match
// its leaf index and leaf count.
func ProofRoot(hasher Hasher, leafHash []byte, proof Proof) ([]byte, error) {

	iPeak, height, ok := LeafPeak(proof.LeafIndex, proof.LeafCount)
	if !ok {
		return nil, fmt.Errorf(
			"%w: leaf index %d, leaf count %d", ErrMalformedProof, proof.LeafIndex, proof.LeafCount)
	}
	want, _ := ProofLen(proof.LeafIndex, proof.LeafCount)
	if len(proof.Items) != want {
		return nil, fmt.Errorf(
			"%w: %d items, expected %d", ErrMalformedProof, len(proof.Items), want)
	}
	for i, item := range proof.Items {
		if len(item) != hasher.Size() {
			return nil, fmt.Errorf("%w: item %d has %d bytes", ErrMalformedProof, i, len(item))
		}
	}

	root := IncludedRoot(hasher, MMRIndex(proof.LeafIndex), leafHash, proof.Items[:height])

	peaks := proof.Items[height:]
	if iPeak > 0 {
		// the bagged peaks to the left
		root = hasher.Combine(peaks[0], root)
		peaks = peaks[1:]
	}
	for _, peak := range peaks {
		root = hasher.Combine(root, peak)
	}
	return root, nil
}

// VerifyProof checks that leaf, combined with proof, reproduces root. It
// touches no storage and may be called concurrently.
func VerifyProof(hasher Hasher, root []byte, leaf Node, proof Proof) error {
	candidate, err := ProofRoot(hasher, leaf.Digest(hasher), proof)
	if err != nil {
		return err
	}
	if !bytes.Equal(candidate, root) {
		return fmt.Errorf("%w: %s", ErrRootMismatch, proof)
	}
	return nil
}
