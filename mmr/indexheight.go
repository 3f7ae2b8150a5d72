package mmr

// References:
// * https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py#L18
// * https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606

// JumpLeftPerfect is used to iteratively discover the left most node at the same
// height as the node identified by pos. This is how we discover the height in
// the tree of an arbitrary position so as to avoid ever having to materialize
// the whole tree. It 'jumps left' by the size of the largest perfect tree which
// would precede pos.
//
// So given,
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
//
// JumpLeftPerfect(13) returns 6 because the size of the largest perfect tree
// preceding 13 is 7. The next jump, JumpLeftPerfect(6) returns 3, because the
// perfect tree preceding 6 is size 3, and the 'all ones' node is found. The
// count of 1's - 1 is the height.
//
// ** Note ** that pos is the *one based* position not the zero based index.
func JumpLeftPerfect(pos uint64) uint64 {
	mostSignificantBit := uint64(1) << (BitLength64(pos) - 1)
	return pos - (mostSignificantBit - 1)
}

// IndexHeight obtains the tree height of an MMR index, taking advantage of the
// binary encoding resulting from the tree construction to do so.
func IndexHeight(i uint64) uint64 {
	// convert from zero based index to 1 based position, else the encoding doesn't work out
	return PosHeight(i + 1)
}

// PosHeight is used when position is a 1 based count
func PosHeight(pos uint64) uint64 {
	for !AllOnes(pos) {
		pos = JumpLeftPerfect(pos)
	}
	return Log2Uint64(pos)
}

// SiblingOffset returns the offset to the sibling at the given height.
func SiblingOffset(height uint64) uint64 {
	// for a 1 based height we would use (1 << height) - 1. As our height is
	// naturally 0 based we start at 2.
	return (2 << height) - 1
}

// ParentOffset returns the offset from a left child to its parent
func ParentOffset(height uint64) uint64 {
	return 2 << height
}

// HeightIndexLeafCount returns the count of leaves in a single perfect
// mountain whose zero based height is heightIndex
func HeightIndexLeafCount(heightIndex uint64) uint64 {
	return 1 << heightIndex
}
