package mmr

// AddHashedLeaf adds a single leaf to the mmr and back fills any interior nodes
// 'above and to the left'
//
// Returns the size of the mmr after addition of the leaf. This is also the
// position of the next leaf.
func AddHashedLeaf(store nodeAppender, hasher Hasher, hashedLeaf []byte) (uint64, error) {

	var err error
	var i uint64

	height := uint64(0) // leaf height is always zero

	if i, err = store.Append(hashedLeaf); err != nil {
		return 0, err
	}

	// This loop checks to see if we can back fill any new mountains. Because of
	// the MMR structure, for any node we add, if the next node after that would
	// be higher in the tree, then the node we just added lets us create at
	// least one new peak.
	//
	// Here, we add the second item, and it lets us add the first peak at 2
	//
	//  0 1 <- we add '1'
	//
	//   2  <- so we get to append '2' as well, because the iNext would be higher
	//  / \
	// 0   1
	//
	// Each backfilled 'peak' is always at the 'next' position relative to the
	// node that was just added.
	//
	// Note that i is at 'next' every time we call IndexHeight
	for IndexHeight(i) > height {

		iLeft := i - (2 << height)
		// iRight is always just i - 1
		// because i - (2 << height ) + SiblingOffset(height)
		// 		=> i - (2 << height ) + (2 << height) - 1
		// 		=> i - 1
		iRight := i - 1

		var left, right []byte

		if left, err = store.Get(iLeft); err != nil {
			return 0, err
		}
		if right, err = store.Get(iRight); err != nil {
			return 0, err
		}

		if i, err = store.Append(hasher.Combine(left, right)); err != nil {
			return 0, err
		}
		height += 1
	}
	return i, nil
}

// BagPeaks folds the peak digests, highest peak first, into the root:
//
//	H(H(H(p0 || p1) || p2) || p3)
//
// A single peak is its own root. No peaks gives EmptyRoot.
func BagPeaks(hasher Hasher, peaks [][]byte) []byte {
	if len(peaks) == 0 {
		return EmptyRoot(hasher)
	}
	root := append([]byte(nil), peaks[0]...)
	for _, peak := range peaks[1:] {
		root = hasher.Combine(root, peak)
	}
	return root
}
