package mmr

import (
	"math/bits"
)

// Peaks returns the array of mountain peaks in the MMR. This is completely
// deterministic given a valid mmr size. If the mmr size is invalid, this
// function returns nil.
//
// It is guaranteed that the peaks are listed in ascending order of position
// value. The highest peak has the lowest position and is listed first. This is
// a consequence of the fact that the 'little' 'down range' peaks can only appear
// to the 'right' of the first perfect peak, and so on recursively.
//
// Note that as a matter of implementation convenience and efficiency the peaks
// are returned as *one based positions*
//
// So given the example below, which has an mmrSize of 17, the peaks are [15, 18]
//
//	3            15
//	           /    \
//	          /      \
//	         /        \
//	2       7          14
//	      /   \       /   \
//	1    3     6    10     13      18
//	    / \  /  \   / \   /  \    /  \
//	0  1   2 4   5 8   9 11   12 16   17
func Peaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 {
		return nil
	}

	// catch invalid range, where siblings exist but no parent exists
	if PosHeight(mmrSize+1) > PosHeight(mmrSize) {
		return nil
	}

	peak := uint64(0)
	var peaks []uint64
	// The top peak is always the left most and, when counting from 1, will have all binary '1's
	for mmrSize != 0 {
		// This next step computes the ^2 floor of the bits in mmrSize, which
		// picks out the highest peak (and also left most) remaining peak in
		// mmrSize (See TopPeak)
		peakSize := TopPeak(mmrSize)

		// Because we *subtract* the computed peak size from mmrSize, we need to
		// recover the actual peak position. The arithmetic all works out so we
		// just accumulate the peakSizes as we go, and the result is always the
		// peak value against the original mmrSize we were given.
		peak = peak + peakSize
		peaks = append(peaks, peak)
		mmrSize -= peakSize
	}
	return peaks
}

// LeafPeaks returns the zero based node indices of the peaks for the mmr
// committing leafCount leaves, highest peak first. The set bits of leafCount,
// most significant first, give the peak heights.
func LeafPeaks(leafCount uint64) []uint64 {
	peaks := Peaks(MMRSize(leafCount))
	for i := range peaks {
		peaks[i]--
	}
	return peaks
}

// PeakHashes returns the digests of the peaks for mmrSize, highest peak first.
func PeakHashes(store indexStoreGetter, mmrSize uint64) ([][]byte, error) {
	var path [][]byte
	for _, pos := range Peaks(mmrSize) {
		stored, err := store.Get(pos - 1)
		if err != nil {
			return nil, err
		}

		// Note: we create a copy here to ensure the value is not modified under the callers feet
		value := make([]byte, len(stored))
		copy(value, stored)

		path = append(path, value)
	}
	return path, nil
}

// PeakIndex returns the index of the peak accumulator for the peak with the provided proof length.
//
// Given:
//
//	leafCount - the count of elements in the current accumulator, eg LeafCount(mmrIndex).
//	d - the length of the path from an element in the mmr identified by leafCount to its peak
//
// Return
//
//	The index of the accumulator peak produced by a valid path of length d
//
// Note that leafCount identifies the mmr state, not the element.
//
// For interior nodes, you must account for the height by adding IndexHeight(mmrIndex) to the path length d.
//
// Example:
//
//		peaks = Peaks(18) = [15, 18]
//		peakBits = LeafCount(18) = 1010
//	 	1 = d = path len for 6
//		2 = IndexHeight(6)
//		peaks[PeakIndex(peakBits, 1 + 2)] == 15
//
// For this MMR:
//
//	3              14
//	             /    \
//	            /      \
//	           /        \
//	          /          \
//	2        6            13
//	       /   \        /    \
//	1     2     5      9     12     17
//	     / \   / \    / \   /  \   /  \
//	0   0   1 3   4  7   8 10  11 15  16
func PeakIndex(leafCount uint64, d int) int {

	// The bitmask corresponding to the peaks in the accumulator is the leaf
	// count. The path length for any element is always the index of a set bit
	// in this mask, and that bit corresponds to the peak which commits the
	// element.
	peaksMask := uint64(1<<(d+1) - 1)

	// The count of set bits at or below the peak height
	n := bits.OnesCount64(leafCount & peaksMask)

	// The accumulator lists peaks highest to lowest, so invert the index.
	// The accumulator length is just the number of bits set in the leaf count.
	return bits.OnesCount64(leafCount) - n
}

// LeafPeak returns the accumulator index and the height of the peak which
// commits leafIndex in the mmr of leafCount leaves. ok is false if leafIndex
// is not committed by that mmr.
func LeafPeak(leafIndex, leafCount uint64) (iPeak int, height uint64, ok bool) {
	if leafIndex >= leafCount {
		return 0, 0, false
	}
	for h := bits.Len64(leafCount); h > 0; h-- {
		peakLeaves := HeightIndexLeafCount(uint64(h - 1))
		if leafCount&peakLeaves == 0 {
			continue
		}
		if leafIndex < peakLeaves {
			return iPeak, uint64(h - 1), true
		}
		leafIndex -= peakLeaves
		iPeak++
	}
	return 0, 0, false
}

// TopPeak returns the smallest, leftmost, peak containing *or equal to* pos
//
// This is essentially a ^2 *floor* function for the accumulation of bits:
//
//	TopPeak(1) = TopPeak(2) = 1
//	TopPeak(3) = TopPeak(4) = TopPeak(5) = TopPeak(6) = 3
//	TopPeak(7) = 7
//
//	2       7
//	      /   \
//	1    3     6    10
//	    / \  /  \   / \
//	0  1   2 4   5 8   9 11
func TopPeak(pos uint64) uint64 {

	// This works by working out the next peak up then subtracting 1, which is a
	// flooring function for the bits over the current peak
	return 1<<Log2Uint64(pos+1) - 1
}

// TopHeight returns the index height of the largest perfect peak contained in, or exactly, pos
func TopHeight(pos uint64) uint64 {
	return Log2Uint64(pos + 1)
}

// PeaksBitmap returns a bit mask where a 1 corresponds to a peak and the position
// of the bit is the height of that peak. The resulting value is also the count
// of leaves. This is due to the binary nature of the tree.
//
// For example, with an mmr with size 19, there are 11 leaves
//
//	          14
//	       /       \
//	     6          13
//	   /   \       /   \
//	  2     5     9     12     17
//	 / \   /  \  / \   /  \   /  \
//	0   1 3   4 7   8 10  11 15  16 18
//
// PeaksBitmap(19) returns 0b1011 which shows, reading from the right (low bit),
// that the lowest peak is at height 0, the second lowest at height 1, then the
// next and last peak is at height 3.
//
// If the provided mmr size is invalid, the returned map will be for the largest
// valid mmr size < the provided invalid size.
func PeaksBitmap(mmrSize uint64) uint64 {
	if mmrSize == 0 {
		return 0
	}
	pos := mmrSize
	peakSize := (uint64(1) << bits.Len64(mmrSize)) - 1
	peakMap := uint64(0)
	for peakSize > 0 {
		peakMap <<= 1
		if pos >= peakSize {
			pos -= peakSize
			peakMap |= 1
		}
		peakSize >>= 1
	}
	return peakMap
}
