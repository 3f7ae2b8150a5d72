// Package mmr implements a Merkle Mountain Range accumulator.
//
// Nodes are identified by their zero based position, assigned in the order
// they are added. Adding a leaf adds the leaf, followed by every interior node
// the leaf completes. For 11 leaves the positions are
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
//	0   0   1 3   4  7   8 10  11 15  16 18
//
// The peaks, 14, 17 and 18, are listed highest first. Their heights are the
// set bits of the leaf count, 0b1011. The root is the left fold of the peak
// digests,
//
//	H(H(peak(14) || peak(17)) || peak(18))
//
// and the root of an empty mmr is all zero bytes.
//
// An interior node is H(left || right). A leaf may be held either as its data,
// or as the digest of its data. Both produce the same node value, so leaf data
// can be removed from the authenticated store and kept in an untrusted
// Archive without changing any root or proof.
//
// Heights, positions and peaks are all derived from the binary representation
// of the position or the leaf count. No tree is ever materialized.
package mmr
