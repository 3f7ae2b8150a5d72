package mmr

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrConsistencyCheck = errors.New("consistency check failed")
)

// ConsistencyProof shows that the mmr of LeafCountB leaves extends the mmr of
// LeafCountA leaves.
//
// PeaksA are the peaks of MMR(A), which bag to its root. Paths holds the
// inclusion path of each A peak in MMR(B). RightPeaks are the MMR(B) peaks
// that commit no A peak.
//
//	    MMR(A):[6, 7]      MMR(B):[6, 9, 10]
//	 2       6                6
//	       /   \            /   \
//	 1    2     5          2     5    9
//	     / \  /  \        / \  /  \   / \
//	 0  0   1 3   4 7    0   1 3   4 7   8 10
//
//		Paths MMR(A) -> MMR(B)
//		6 in MMR(B) -> []
//		7 in MMR(B) -> [8]
//		Paths = [[], [8]], RightPeaks = [10]
type ConsistencyProof struct {
	LeafCountA uint64     `cbor:"1,keyasint"`
	LeafCountB uint64     `cbor:"2,keyasint"`
	PeaksA     [][]byte   `cbor:"3,keyasint"`
	Paths      [][][]byte `cbor:"4,keyasint"`
	RightPeaks [][]byte   `cbor:"5,keyasint"`
}

// IndexConsistencyProof creates a proof that the mmr of leafCountB leaves
// appends to the mmr of leafCountA leaves. It works by generating inclusion
// paths for each of the peaks of A.
func IndexConsistencyProof(store indexStoreGetter, leafCountA, leafCountB uint64) (ConsistencyProof, error) {

	if leafCountA > leafCountB {
		return ConsistencyProof{}, fmt.Errorf(
			"%w: from %d leaves to %d", ErrLeafCountInvalid, leafCountA, leafCountB)
	}

	mmrSizeB := MMRSize(leafCountB)
	cp := ConsistencyProof{
		LeafCountA: leafCountA,
		LeafCountB: leafCountB,
		Paths:      [][][]byte{},
	}

	var err error
	if cp.PeaksA, err = PeakHashes(store, MMRSize(leafCountA)); err != nil {
		return ConsistencyProof{}, err
	}
	peaksB, err := PeakHashes(store, mmrSizeB)
	if err != nil {
		return ConsistencyProof{}, err
	}

	covered := 0
	peakIndicesB := LeafPeaks(leafCountB)
	for _, iPeakA := range LeafPeaks(leafCountA) {
		path, iLocalPeak, _, err := IndexProofPath(mmrSizeB, store, iPeakA)
		if err != nil {
			return ConsistencyProof{}, err
		}
		cp.Paths = append(cp.Paths, path)
		for covered < len(peakIndicesB) && peakIndicesB[covered] <= iLocalPeak {
			covered++
		}
	}
	cp.RightPeaks = peaksB[covered:]
	return cp, nil
}

// VerifyConsistency checks that rootA and rootB are the roots of two states of
// the same mmr, the state B appending to the state A.
func VerifyConsistency(hasher Hasher, cp ConsistencyProof, rootA, rootB []byte) error {

	if cp.LeafCountA > cp.LeafCountB {
		return fmt.Errorf("%w: from %d leaves to %d", ErrMalformedProof, cp.LeafCountA, cp.LeafCountB)
	}
	if !bytes.Equal(BagPeaks(hasher, cp.PeaksA), rootA) {
		return fmt.Errorf("%w: the peaks do not produce the earlier root", ErrConsistencyCheck)
	}

	// Each path must end at the B peak committing its A peak.
	mmrSizeB := MMRSize(cp.LeafCountB)
	fromPeaks := LeafPeaks(cp.LeafCountA)
	if len(fromPeaks) != len(cp.Paths) {
		return fmt.Errorf("%w: %d paths for %d peaks", ErrMalformedProof, len(cp.Paths), len(fromPeaks))
	}
	for i, iPeak := range fromPeaks {
		if _, d := LocalPeak(mmrSizeB, iPeak); d != len(cp.Paths[i]) {
			return fmt.Errorf("%w: path %d has length %d, expected %d", ErrMalformedProof, i, len(cp.Paths[i]), d)
		}
	}

	proven, err := ConsistentRoots(hasher, cp.LeafCountA, cp.PeaksA, cp.Paths)
	if err != nil {
		return err
	}
	if len(proven)+len(cp.RightPeaks) != bits.OnesCount64(cp.LeafCountB) {
		return fmt.Errorf("%w: wrong number of peaks for %d leaves", ErrMalformedProof, cp.LeafCountB)
	}

	// The later accumulator is the proven prefix followed by the peaks that
	// commit only new leaves.
	if !bytes.Equal(BagPeaks(hasher, append(proven, cp.RightPeaks...)), rootB) {
		return fmt.Errorf("%w: the proven peaks do not produce the later root", ErrConsistencyCheck)
	}
	return nil
}
